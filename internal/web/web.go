// Package web holds the server-rendered pages of the site. Templates are
// embedded in the binary and rendered through gin's HTML renderer.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageHome = "home.html"
	PageApp  = "app.html"
	PageOpen = "open.html"
)

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for process start-up.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// OpenData feeds the deep-link bounce page. The script runs the same race as
// deeplink.Attempt: navigate to Target, and if no hidden, blur or pagehide
// signal arrives within TimeoutMS (and at least MinElapsedMS really passed),
// replace the page with Fallback.
type OpenData struct {
	Target       string
	Fallback     string
	Landing      string
	TimeoutMS    int64
	MinElapsedMS int64
	Nonce        string
}

// AppData feeds the app promo and desktop landing page.
type AppData struct {
	AppStoreURL  string
	PlayStoreURL string
	Platform     string
}
