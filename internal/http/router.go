// README: HTTP router registration (Gin).
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dispatch/internal/circuit"
	"dispatch/internal/http/handlers"
	"dispatch/internal/http/middleware"
	"dispatch/internal/service"
)

type RouterDeps struct {
	Dispatcher *service.Dispatcher
	Breakers   *circuit.Registry
	Logger     *slog.Logger
	Version    string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))

	dispatchHandler := handlers.NewDispatchHandler(deps.Dispatcher, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Version, deps.Breakers)

	r.POST("/dispatch/process", dispatchHandler.Process)
	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
