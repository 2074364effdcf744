package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the body of every successful request.
type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a message and optional data with the given status.
func JSON(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Message: message, Data: data})
}

// OK writes a 200 OK envelope.
func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data)
}
