package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubVerifier map[string]string

func (s stubVerifier) Session(token string) (string, error) {
	if uid, ok := s[token]; ok {
		return uid, nil
	}
	return "", errors.New("bad token")
}

func TestAuth_AndRequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(stubVerifier{"good": "u1"}))
	r.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, UserID(c)) })
	r.GET("/private", RequireUser(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		name, path, header string
		wantCode           int
		wantBody           string
	}{
		{"anonymous whoami", "/whoami", "", http.StatusOK, ""},
		{"valid token", "/whoami", "Bearer good", http.StatusOK, "u1"},
		{"scheme is case-insensitive", "/whoami", "bearer good", http.StatusOK, "u1"},
		{"bad token stays anonymous", "/whoami", "Bearer nope", http.StatusOK, ""},
		{"basic auth ignored", "/whoami", "Basic good", http.StatusOK, ""},
		{"private without token", "/private", "", http.StatusUnauthorized, ""},
		{"private with token", "/private", "Bearer good", http.StatusNoContent, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != tc.wantCode {
				t.Fatalf("status = %d; want %d", w.Code, tc.wantCode)
			}
			if tc.wantCode == http.StatusOK && w.Body.String() != tc.wantBody {
				t.Fatalf("body = %q; want %q", w.Body.String(), tc.wantBody)
			}
			if tc.wantCode == http.StatusUnauthorized && !strings.Contains(w.Body.String(), `"unauthorized"`) {
				t.Fatalf("expected unauthorized code, got %s", w.Body.String())
			}
		})
	}
}

func TestVisitor_AssignsAndReusesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Visitor(false))
	r.GET("/s", func(c *gin.Context) { c.String(http.StatusOK, Subject(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s", nil))
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie {
		t.Fatalf("expected %s cookie, got %+v", VisitorCookie, cookies)
	}
	vid := cookies[0].Value
	if w.Body.String() != "visitor:"+vid {
		t.Fatalf("subject = %q; want visitor:%s", w.Body.String(), vid)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/s", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: vid})
	r.ServeHTTP(w, req)
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("existing cookie should be reused")
	}
	if w.Body.String() != "visitor:"+vid {
		t.Fatalf("subject = %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/s", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "../../etc"})
	r.ServeHTTP(w, req)
	if len(w.Result().Cookies()) != 1 {
		t.Fatalf("malformed cookie should be replaced")
	}
}

func TestSubject_PrefersUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if Subject(c) != "" {
		t.Fatalf("expected empty subject")
	}
	c.Set(ctxVisitorID, "v1")
	c.Set(CtxUserID, "u1")
	if got := Subject(c); got != "user:u1" {
		t.Fatalf("subject = %q", got)
	}
}
