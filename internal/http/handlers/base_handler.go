// README: Base handler utilities (JSON helpers, error envelope).
package handlers

import (
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, code, message, field string) {
	writeJSON(c, status, errorResponse{Error: errorBody{Code: code, Message: message, Field: field}})
}
