// README: Health endpoint with provider breaker states.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/circuit"
)

type HealthHandler struct {
	version  string
	started  time.Time
	breakers *circuit.Registry
}

func NewHealthHandler(version string, breakers *circuit.Registry) *HealthHandler {
	return &HealthHandler{version: version, started: time.Now(), breakers: breakers}
}

func (h *HealthHandler) Health(c *gin.Context) {
	providers := map[string]string{
		"geocoding": "closed",
		"llm":       "closed",
		"traffic":   "closed",
	}
	for name, state := range h.breakers.States() {
		providers[name] = state
	}
	writeJSON(c, http.StatusOK, gin.H{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"providers":      providers,
	})
}
