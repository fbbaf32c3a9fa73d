package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/config"
	"github.com/snaportho/snaportho-web/internal/domain"
	"github.com/snaportho/snaportho-web/internal/http/middleware"
	"github.com/snaportho/snaportho-web/internal/services"
	"github.com/snaportho/snaportho-web/internal/web"
)

type stubBroBot struct {
	askFn     func(ctx context.Context, owner, q string) (*services.Answer, error)
	historyFn func(ctx context.Context, owner string, page, size int) (*services.HistoryPage, error)
}

func (s *stubBroBot) Ask(ctx context.Context, owner, q string) (*services.Answer, error) {
	return s.askFn(ctx, owner, q)
}

func (s *stubBroBot) History(ctx context.Context, owner string, page, size int) (*services.HistoryPage, error) {
	return s.historyFn(ctx, owner, page, size)
}

type stubFeedback struct {
	fn func(ctx context.Context, in services.FeedbackInput) (string, bool, error)
}

func (s *stubFeedback) Submit(ctx context.Context, in services.FeedbackInput) (string, bool, error) {
	return s.fn(ctx, in)
}

type stubAuth struct {
	signUpFn func(ctx context.Context, email, pw string) (*services.Session, error)
	signInFn func(ctx context.Context, email, pw string) (*services.Session, error)
	userFn   func(ctx context.Context, uid string) (*domain.User, error)
}

func (s *stubAuth) SignUp(ctx context.Context, email, pw string) (*services.Session, error) {
	return s.signUpFn(ctx, email, pw)
}

func (s *stubAuth) SignIn(ctx context.Context, email, pw string) (*services.Session, error) {
	return s.signInFn(ctx, email, pw)
}

func (s *stubAuth) CurrentUser(ctx context.Context, uid string) (*domain.User, error) {
	return s.userFn(ctx, uid)
}

type stubProfiles struct {
	getFn  func(ctx context.Context, uid string) (*domain.Profile, error)
	saveFn func(ctx context.Context, uid string, in services.ProfileInput) (*domain.Profile, error)
}

func (s *stubProfiles) Get(ctx context.Context, uid string) (*domain.Profile, error) {
	return s.getFn(ctx, uid)
}

func (s *stubProfiles) Save(ctx context.Context, uid string, in services.ProfileInput) (*domain.Profile, error) {
	return s.saveFn(ctx, uid, in)
}

var testDeepLink = config.DeepLinkConfig{
	Scheme:       "snaportho",
	AppStoreURL:  "https://apps.apple.com/us/app/snaportho/id1515590779",
	PlayStoreURL: "https://play.google.com/store/apps/details?id=com.snaportho.app",
	LandingURL:   "/app",
	Timeout:      1200 * time.Millisecond,
	MinElapsed:   600 * time.Millisecond,
}

// newTestEngine wires h behind the middleware the handlers rely on. A
// non-empty uid is injected as the authenticated member.
func newTestEngine(h *Handlers, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.MustTemplates())
	r.Use(middleware.RequestID())
	r.Use(func(c *gin.Context) {
		if uid != "" {
			c.Set(middleware.CtxUserID, uid)
		}
		c.Next()
	})
	r.Use(middleware.Visitor(false))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{ContentSecurityPolicy: true}))

	r.GET("/", h.Home)
	r.GET("/app", h.App)
	r.GET("/open", h.Open)
	r.GET("/health", h.Health)
	r.POST("/brobot/ask", h.Ask)
	r.GET("/brobot/history", h.History)
	r.POST("/brobot/feedback", middleware.IdempotencyValidator(middleware.IdempotencyOptions{Scope: services.ScopeFeedback}, nil), h.SubmitFeedback)
	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/signin", h.SignIn)
	r.GET("/auth/session", h.CurrentSession)
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.SaveProfile)
	r.GET("/seen/:flag", h.GetSeen)
	r.PUT("/seen/:flag", h.MarkSeen)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return er
}
