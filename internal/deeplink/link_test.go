package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snaportho/snaportho-web/internal/platform"
)

func TestBuildTarget(t *testing.T) {
	got, err := BuildTarget("snaportho", "/cases/hip?id=3")
	require.NoError(t, err)
	assert.Equal(t, "snaportho://cases/hip?id=3", got)

	got, err = BuildTarget("snaportho://", "home")
	require.NoError(t, err)
	assert.Equal(t, "snaportho://home", got)

	for _, bad := range []string{"https://evil.example/x", "//evil.example", "a\r\nb", `a\b`} {
		_, err := BuildTarget("snaportho", bad)
		assert.ErrorIs(t, err, ErrBadTarget, bad)
	}
	_, err = BuildTarget("", "home")
	assert.ErrorIs(t, err, ErrBadTarget)
}

func TestSanitizeFallback(t *testing.T) {
	allowed := []string{"apps.apple.com", "play.google.com", "snaportho.com"}

	assert.Equal(t, "https://snaportho.com/get", SanitizeFallback("https://snaportho.com/get", allowed))
	assert.Equal(t, "https://APPS.apple.com/x", SanitizeFallback("https://APPS.apple.com/x", allowed))
	assert.Empty(t, SanitizeFallback("http://snaportho.com/get", allowed), "plain http rejected")
	assert.Empty(t, SanitizeFallback("https://evil.example/get", allowed))
	assert.Empty(t, SanitizeFallback("https://snaportho.com.evil.example/", allowed))
	assert.Empty(t, SanitizeFallback("https://user@snaportho.com/", allowed))
	assert.Empty(t, SanitizeFallback("/relative", allowed))
	assert.Empty(t, SanitizeFallback("", allowed))
}

func TestResolveFallback(t *testing.T) {
	assert.Equal(t, testStores.AppleStore, ResolveFallback(platform.AppleMobile, "", testStores))
	assert.Equal(t, testStores.PlayStore, ResolveFallback(platform.Android, "", testStores))
	assert.Equal(t, "https://x", ResolveFallback(platform.Android, "https://x", testStores))
	assert.Equal(t, testStores.Landing, ResolveFallback(platform.Desktop, "https://x", testStores))
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "apps.apple.com", HostOf("https://Apps.Apple.com/app/id1"))
	assert.Empty(t, HostOf("not a url"))
}
