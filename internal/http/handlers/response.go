// Package handlers implements the page and JSON API endpoints of the site.
//
// Every failure is written as an ErrorResponse with a stable code so the
// mobile and web clients can branch on it:
//
//	HTTP/1.1 401 Unauthorized
//	{"request_id":"5f0c…","code":"unauthorized","message":"sign in required"}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/http/middleware"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"5f0c2a8e-1d4b-4c1e-9a57-3b1f0e6d2c11"`
	Code      string `json:"code" example:"lookup_failed"`
	Message   string `json:"message" example:"answers are temporarily unavailable"`
}

func fail(c *gin.Context, status int, code, msg string) {
	rid := c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Msg(msg)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: rid, Code: code, Message: msg})
}

// Fail writes the error envelope. The router uses it for 404 and 405.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) { c.JSON(status, body) }

func noContent(c *gin.Context) { c.Status(http.StatusNoContent) }
