package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the success body shared by every document route.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK writes {"success": true, "data": data}. A nil data omits the key.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, Envelope{Success: true, Data: data})
}
