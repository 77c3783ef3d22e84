// README: Dispatch endpoint: binds the turn request and returns the decision.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/service"
)

type DispatchHandler struct {
	dispatcher *service.Dispatcher
	logger     *slog.Logger
}

func NewDispatchHandler(dispatcher *service.Dispatcher, logger *slog.Logger) *DispatchHandler {
	return &DispatchHandler{dispatcher: dispatcher, logger: logger}
}

// Process handles POST /dispatch/process. The pipeline always produces a
// decision for valid input, so anything past validation answering non-200
// is a bug worth the error log.
func (h *DispatchHandler) Process(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "malformed_json", "request body is not valid JSON", "")
		return
	}
	if ferr := req.Validate(); ferr != nil {
		writeError(c, http.StatusUnprocessableEntity, ferr.Code, ferr.Message, ferr.Field)
		return
	}

	body, err := h.dispatcher.Process(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("dispatch pipeline failed", "error", err, "conversation_sid", req.ConversationSID)
		writeError(c, http.StatusInternalServerError, "internal_error", "internal error", "")
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
