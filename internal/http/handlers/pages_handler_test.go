package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Mobile Safari/537.36"
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	uaDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

func get(r http.Handler, path, ua string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", ua)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOpen_AndroidBouncesToPlayStore(t *testing.T) {
	r := newTestEngine(New(Deps{DeepLink: testDeepLink}), "")

	w := get(r, "/open?to=/cases/hip", uaAndroid)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `snaportho:\/\/cases\/hip`)
	assert.Contains(t, body, "play.google.com")
	assert.Regexp(t, `var timeout = +1200 *;`, body)
	assert.Regexp(t, `var minElapsed = +600 *;`, body)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	// The inline script carries the CSP nonce.
	csp := w.Header().Get("Content-Security-Policy")
	require.NotEmpty(t, csp)
	assert.Regexp(t, `<script nonce="[A-Za-z0-9_-]{22}">`, body)
}

func TestOpen_IPhoneUsesAppStoreOrAllowedFallback(t *testing.T) {
	r := newTestEngine(New(Deps{DeepLink: testDeepLink}), "")

	w := get(r, "/open?to=home", uaIPhone)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "apps.apple.com")

	fb := url.QueryEscape("https://apps.apple.com/us/app/other/id1")
	w = get(r, "/open?to=home&fallback="+fb, uaIPhone)
	assert.Contains(t, w.Body.String(), "apps.apple.com/us/app/other/id1")

	// Hosts outside the allow-list are ignored.
	fb = url.QueryEscape("https://evil.example/phish")
	w = get(r, "/open?to=home&fallback="+fb, uaIPhone)
	assert.NotContains(t, w.Body.String(), "evil.example")
	assert.Contains(t, w.Body.String(), "id1515590779")
}

func TestOpen_DesktopAndInvalidRedirectToLanding(t *testing.T) {
	r := newTestEngine(New(Deps{DeepLink: testDeepLink}), "")

	w := get(r, "/open?to=/cases/hip", uaDesktop)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/app", w.Header().Get("Location"))

	w = get(r, "/open?to="+url.QueryEscape("https://evil.example"), uaAndroid)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/app", w.Header().Get("Location"))
}

func TestOpen_AttemptDecidesRouteAndTiming(t *testing.T) {
	dl := testDeepLink
	dl.Timeout, dl.MinElapsed = 0, 0
	r := newTestEngine(New(Deps{DeepLink: dl}), "")

	// Unset windows fall back to the attempt's defaults.
	w := get(r, "/open?to=cases/hip", uaAndroid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t, `var timeout = +1200 *;`, w.Body.String())
	assert.Regexp(t, `var minElapsed = +600 *;`, w.Body.String())

	// Desktop ignores an allowed explicit fallback and lands on /app.
	fb := url.QueryEscape("https://apps.apple.com/us/app/other/id1")
	w = get(r, "/open?to=cases/hip&fallback="+fb, uaDesktop)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/app", w.Header().Get("Location"))

	// Android honours the same fallback over the Play Store.
	w = get(r, "/open?to=cases/hip&fallback="+fb, uaAndroid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "apps.apple.com")
	assert.NotContains(t, w.Body.String(), "play.google.com")
}

func TestPages_HomeAppHealth(t *testing.T) {
	r := newTestEngine(New(Deps{DeepLink: testDeepLink}), "")

	w := get(r, "/", uaDesktop)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = get(r, "/app", uaAndroid)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "play.google.com")
	assert.Contains(t, w.Body.String(), "android")

	w = get(r, "/health", uaDesktop)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
