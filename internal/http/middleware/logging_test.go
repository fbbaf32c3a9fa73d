package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// swapGlobalLogger points the global zerolog logger at a buffer for the
// duration of the test.
func swapGlobalLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	orig := log.Logger
	log.Logger = zerolog.New(buf)
	t.Cleanup(func() { log.Logger = orig })
	return buf
}

// logLines decodes one JSON object per line.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	minted := w.Header().Get(requestIDHeader)
	if len(minted) != 36 || w.Body.String() != minted {
		t.Fatalf("minted id %q, context saw %q", minted, w.Body.String())
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-request-id", "edge-42")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(requestIDHeader); got != "edge-42" {
		t.Fatalf("incoming id not reused: %q", got)
	}
}

func TestLogger_LevelByOutcome(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := swapGlobalLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger(LogOptions{}))
	r.GET("/app", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errors.New("generator down"))
		c.Status(http.StatusBadGateway)
	})
	r.GET("/gone", func(c *gin.Context) { c.Status(http.StatusGone) })

	want := map[string]string{"/app": "info", "/gone": "warn", "/broken": "error", "/no-such-page": "warn"}
	for path := range want {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	seen := map[string]string{}
	for _, m := range logLines(t, buf) {
		if m["message"] != "http_request" {
			continue
		}
		seen[m["path"].(string)] = m["level"].(string)
		if m["path"] == "/broken" && !strings.Contains(m["errors"].(string), "generator down") {
			t.Errorf("gin errors missing from line: %v", m)
		}
	}
	for path, lvl := range want {
		if seen[path] != lvl {
			t.Errorf("%s logged at %q, want %q", path, seen[path], lvl)
		}
	}
}

func TestLogger_NeverLogsPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := swapGlobalLogger(t)

	r := gin.New()
	r.Use(RequestID(), Logger(LogOptions{MaskHeaders: []string{" X-Api-Key ", ""}, LogHeaders: true}))
	r.GET("/open", func(c *gin.Context) { c.Status(http.StatusFound) })

	req := httptest.NewRequest(http.MethodGet,
		"/open?to=cases/hip&email=pgy2+ortho@hospital.org&uid=123e4567-e89b-12d3-a456-426614174000&tel=555-123-4567", nil)
	req.Header.Set("Authorization", "Bearer eyJhbGciOi")
	req.Header.Set("Cookie", "snp_vid=v-1")
	req.Header.Set("X-Api-Key", "k-999")
	req.Header.Set("X-Note", "reach me at resident@hospital.org")
	r.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	for _, secret := range []string{"pgy2+ortho@hospital.org", "123e4567", "555-123-4567", "eyJhbGciOi", "snp_vid=v-1", "k-999", "resident@hospital.org"} {
		if strings.Contains(out, secret) {
			t.Errorf("log contains %q", secret)
		}
	}
	for _, marker := range []string{"to=cases/hip", "[REDACTED:email]", "[REDACTED:id]", "[REDACTED:phone]", `"X-Api-Key":"[REDACTED]"`} {
		if !strings.Contains(out, marker) {
			t.Errorf("log missing %s:\n%s", marker, out)
		}
	}
}

func TestLogger_RequestScopedFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := swapGlobalLogger(t)

	r := gin.New()
	r.Use(RequestID(), func(c *gin.Context) { c.Set(CtxUserID, "u7"); c.Next() }, Logger(LogOptions{}))
	r.GET("/brobot", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("service line")
		LoggerFrom(c).Info().Msg("handler line")
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/brobot", nil)
	req.Header.Set(requestIDHeader, "rid-9")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := logLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("want service, handler and access lines, got %d", len(lines))
	}
	for _, m := range lines {
		if m["request_id"] != "rid-9" || m["user_id"] != "u7" || m["path"] != "/brobot" {
			t.Errorf("line lacks request fields: %v", m)
		}
	}
}

func TestLoggerFrom_WithoutMiddleware(t *testing.T) {
	buf := swapGlobalLogger(t)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	LoggerFrom(c).Warn().Msg("bare")
	if !strings.Contains(buf.String(), `"message":"bare"`) || strings.Contains(buf.String(), "request_id") {
		t.Fatalf("fallback logger output: %s", buf.String())
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("before write", func(t *testing.T) {
		buf := swapGlobalLogger(t)
		r := gin.New()
		r.Use(RequestID(), Logger(LogOptions{}), Recovery())
		r.GET("/p", func(c *gin.Context) { panic("nil map") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d", w.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("body: %v", err)
		}
		if body["code"] != "internal_error" || body["request_id"] == "" || body["request_id"] != w.Header().Get(requestIDHeader) {
			t.Fatalf("envelope = %v", body)
		}
		if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), "nil map") {
			t.Fatalf("panic not logged:\n%s", buf.String())
		}
	})

	t.Run("after write", func(t *testing.T) {
		swapGlobalLogger(t)
		r := gin.New()
		r.Use(RequestID(), Recovery())
		r.GET("/p", func(c *gin.Context) {
			c.String(http.StatusOK, "half")
			panic("late")
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
		if w.Body.String() != "half" {
			t.Fatalf("body rewritten after panic: %q", w.Body.String())
		}
	})
}

func TestScrub(t *testing.T) {
	for in, want := range map[string]string{
		"":                                        "",
		"to=cases/hip":                            "to=cases/hip",
		"id=123e4567-e89b-12d3-a456-426614174000": "id=[REDACTED:id]",
		"mail=a@b.co":                             "mail=[REDACTED:email]",
		"call 555-123-4567":                       "call [REDACTED:phone]",
	} {
		if got := Scrub(in); got != want {
			t.Errorf("Scrub(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTruncateAndAsString(t *testing.T) {
	if got := truncate("abcdefgh", 5); got != "abcde…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 0); got != "abc" {
		t.Errorf("truncate disabled = %q", got)
	}
	if asString(42) != "" || asString("x") != "x" {
		t.Error("asString")
	}
}
