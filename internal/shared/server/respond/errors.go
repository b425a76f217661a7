package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/telemetry"
)

// FailureResponse is the body for handled failures.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// UnauthorizedResponse is the body of the public-read miss.
type UnauthorizedResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// Failure logs and aborts with {"success": false, "message", "error"}.
func Failure(c *gin.Context, status int, message, detail string) {
	logFailure(c, status, message, detail)
	c.AbortWithStatusJSON(status, FailureResponse{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

// AuthenticationRequired aborts with the gate's 401 body.
func AuthenticationRequired(c *gin.Context) {
	Failure(c, http.StatusUnauthorized, "Authentication required", "")
}

// Unauthorized aborts with {"error": true, "message": "unauthorized"}.
func Unauthorized(c *gin.Context) {
	logFailure(c, http.StatusUnauthorized, "unauthorized", "")
	c.AbortWithStatusJSON(http.StatusUnauthorized, UnauthorizedResponse{
		Error:   true,
		Message: "unauthorized",
	})
}

func logFailure(c *gin.Context, status int, message, detail string) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if detail != "" {
		fields["error"] = detail
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
		return
	}
	telemetry.Warn("http.error", fields)
}
