package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VisitorCookie names the anonymous visitor cookie.
const VisitorCookie = "snp_vid"

const (
	ctxVisitorID  = "visitorID"
	visitorMaxAge = 365 * 24 * time.Hour
)

var visitorRe = regexp.MustCompile(`^[0-9a-f-]{36}$`)

// Visitor assigns every browser a stable anonymous ID in the snp_vid cookie
// so one-time UI flags work before sign-in. Malformed cookies are replaced.
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if err != nil || !visitorRe.MatchString(vid) {
			vid = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     VisitorCookie,
				Value:    vid,
				Path:     "/",
				MaxAge:   int(visitorMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(ctxVisitorID, vid)
		c.Next()
	}
}

// Subject identifies the caller for per-person state: "user:<id>" when signed
// in, "visitor:<id>" otherwise, or "" when neither is known.
func Subject(c *gin.Context) string {
	if uid := UserID(c); uid != "" {
		return "user:" + uid
	}
	if v, ok := c.Get(ctxVisitorID); ok {
		if s, ok := v.(string); ok && s != "" {
			return "visitor:" + s
		}
	}
	return ""
}
