package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxUserID is the Gin context key holding the authenticated user ID.
const CtxUserID = "userID"

// TokenVerifier resolves a bearer token to a user ID.
type TokenVerifier interface {
	Session(token string) (userID string, err error)
}

// Auth reads "Authorization: Bearer <token>" and, when the token verifies,
// stores the user ID under CtxUserID. Missing or invalid tokens leave the
// request anonymous; use RequireUser on routes that need a member.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") && v != nil {
			if uid, err := v.Session(strings.TrimSpace(token)); err == nil && uid != "" {
				c.Set(CtxUserID, uid)
			}
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless Auth identified the caller.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "sign in required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
