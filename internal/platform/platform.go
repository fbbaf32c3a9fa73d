// Package platform classifies a browser into the three families the deep-link
// flow cares about: Android, Apple mobile (iPhone, iPad, iPod) and desktop.
package platform

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Tag is the detected platform family.
type Tag string

const (
	Android     Tag = "android"
	AppleMobile Tag = "apple-mobile"
	Desktop     Tag = "desktop"
)

var (
	androidRe = regexp.MustCompile(`(?i)android`)
	appleRe   = regexp.MustCompile(`(?i)iphone|ipad|ipod`)
)

// Detect classifies a browser from its user agent, navigator.platform and
// navigator.maxTouchPoints. Android wins over every other rule. iPadOS 13+
// reports a desktop Safari user agent with platform "MacIntel", so a
// touch-capable MacIntel is treated as Apple mobile.
func Detect(userAgent, platform string, maxTouchPoints int) Tag {
	switch {
	case androidRe.MatchString(userAgent):
		return Android
	case appleRe.MatchString(userAgent),
		platform == "MacIntel" && maxTouchPoints > 1:
		return AppleMobile
	default:
		return Desktop
	}
}

// IsMobile reports whether t is a phone or tablet family.
func (t Tag) IsMobile() bool { return t == Android || t == AppleMobile }

// FromRequest gathers the detection signals from an HTTP request. Browsers
// don't send navigator.platform or maxTouchPoints, so the site's links append
// them as the "p" and "tp" query hints; the Sec-CH-UA-Platform client hint is
// used when "p" is absent.
func FromRequest(r *http.Request) Tag {
	ua := r.UserAgent()
	q := r.URL.Query()

	plat := strings.TrimSpace(q.Get("p"))
	if plat == "" {
		plat = strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `" `)
	}
	touch, err := strconv.Atoi(q.Get("tp"))
	if err != nil || touch < 0 {
		touch = 0
	}
	return Detect(ua, plat, touch)
}
