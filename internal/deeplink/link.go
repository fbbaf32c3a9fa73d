package deeplink

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrBadTarget is returned for app paths that are absolute URLs or
	// otherwise unusable.
	ErrBadTarget = errors.New("deeplink: target must be a relative app path")
)

// BuildTarget joins the app scheme with a relative app path, e.g.
// ("snaportho", "/cases/hip?id=3") -> "snaportho://cases/hip?id=3".
func BuildTarget(scheme, to string) (string, error) {
	scheme = strings.TrimSuffix(strings.TrimSpace(scheme), "://")
	to = strings.TrimSpace(to)
	if scheme == "" {
		return "", ErrBadTarget
	}
	if strings.Contains(to, "://") || strings.HasPrefix(to, "//") || strings.ContainsAny(to, "\r\n\\") {
		return "", ErrBadTarget
	}
	to = strings.TrimLeft(to, "/")
	u, err := url.Parse(to)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", ErrBadTarget
	}
	return scheme + "://" + u.String(), nil
}

// SanitizeFallback returns raw when it is an absolute https URL whose host is
// in allowed (case-insensitive, exact match), otherwise "".
func SanitizeFallback(raw string, allowed []string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" || u.User != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range allowed {
		if strings.EqualFold(strings.TrimSpace(h), host) {
			return u.String()
		}
	}
	return ""
}

// HostOf returns the lower-cased host of rawURL, or "" when it has none.
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
