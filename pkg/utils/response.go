package utils

import (
	"github.com/gin-gonic/gin"
)

// Response is the standard JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"` // field path or upstream message
}

func APIResponse(c *gin.Context, code int, success bool, message string, data interface{}) {
	c.JSON(code, Response{
		Success: success,
		Message: message,
		Data:    data,
	})
}

// APIError writes a failure envelope with a detail string and aborts the chain.
func APIError(c *gin.Context, code int, message string, detail string) {
	c.AbortWithStatusJSON(code, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}
