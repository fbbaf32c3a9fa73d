// Page handlers.
//
//   - GET /      (home)
//   - GET /app   (app promo, also the desktop landing page)
//   - GET /open  (deep-link bounce: try the app, fall back to the store)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/snaportho/snaportho-web/internal/deeplink"
	"github.com/snaportho/snaportho-web/internal/http/middleware"
	"github.com/snaportho/snaportho-web/internal/observability"
	"github.com/snaportho/snaportho-web/internal/platform"
	"github.com/snaportho/snaportho-web/internal/web"
)

// Deep-link outcomes recorded in deeplink_attempts_total.
const (
	openActionBounce  = "bounce"
	openActionLanding = "landing"
	openActionInvalid = "invalid"
)

// Home renders the marketing home page.
func (h *Handlers) Home(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageHome, nil)
}

// App renders the app promo page with both store links. The detected
// platform lets the page highlight the matching store badge.
func (h *Handlers) App(c *gin.Context) {
	c.HTML(http.StatusOK, web.PageApp, web.AppData{
		AppStoreURL:  h.deepLink.AppStoreURL,
		PlayStoreURL: h.deepLink.PlayStoreURL,
		Platform:     string(platform.FromRequest(c.Request)),
	})
}

// Open is the deep-link bounce. Mobile visitors get a page that tries the
// app scheme and falls back to the store, or to an allow-listed ?fallback=,
// when the app does not take over in time. Desktop visitors and invalid
// targets are redirected to the landing page.
//
// The server runs the attempt's first step: Start either navigates to the
// app target, which the rendered page performs, or short-circuits desktop
// visitors to the landing page, which becomes a 302.
func (h *Handlers) Open(c *gin.Context) {
	p := platform.FromRequest(c.Request)
	stores := deeplink.Stores{
		AppleStore: h.deepLink.AppStoreURL,
		PlayStore:  h.deepLink.PlayStoreURL,
		Landing:    h.deepLink.LandingURL,
	}

	target, err := deeplink.BuildTarget(h.deepLink.Scheme, c.Query("to"))
	if err != nil {
		observability.ObserveDeepLink(string(p), openActionInvalid)
		middleware.LoggerFrom(c).Debug().Str("to", c.Query("to")).Msg("rejected deep-link target")
		c.Redirect(http.StatusFound, stores.Landing)
		return
	}

	raw := c.Query("fallback")
	explicit := deeplink.SanitizeFallback(raw, h.fallbackHosts)
	if raw != "" && explicit == "" {
		middleware.LoggerFrom(c).Debug().Str("host", deeplink.HostOf(raw)).Msg("ignored fallback outside allow-list")
	}

	var nav []string
	a := deeplink.New(deeplink.Options{
		Target:     target,
		Fallback:   explicit,
		Platform:   p,
		Timeout:    h.deepLink.Timeout,
		MinElapsed: h.deepLink.MinElapsed,
		Stores:     stores,
		Navigator:  deeplink.NavigatorFunc(func(u string) { nav = append(nav, u) }),
	})
	if a.Start() == deeplink.Redirected {
		observability.ObserveDeepLink(string(p), openActionLanding)
		c.Redirect(http.StatusFound, a.Destination())
		return
	}

	observability.ObserveDeepLink(string(p), openActionBounce)
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, web.PageOpen, web.OpenData{
		Target:       nav[0],
		Fallback:     a.StoreURL(),
		Landing:      stores.Landing,
		TimeoutMS:    a.Timeout().Milliseconds(),
		MinElapsedMS: a.MinElapsed().Milliseconds(),
		Nonce:        middleware.CSPNonce(c),
	})
}

// Health is the liveness probe.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
