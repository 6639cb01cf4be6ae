package contentservice

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testOriginBase = "https://cms.fitnova.club/wp-json"

func newTestRewriter(t *testing.T) *Rewriter {
	t.Helper()

	rw, err := NewRewriter(testOriginBase)
	assert.NoError(t, err)

	return rw
}

func TestNewRewriter(t *testing.T) {
	rw := newTestRewriter(t)
	assert.Equal(t, "https://cms.fitnova.club", rw.Origin())
	assert.Equal(t, "cms.fitnova.club", rw.Host())

	_, err := NewRewriter("not a url at all\x7f")
	assert.Error(t, err)

	_, err = NewRewriter("/just/a/path")
	assert.Error(t, err)
}

func TestIsOriginAsset(t *testing.T) {
	rw := newTestRewriter(t)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "Origin Host",
			url:  "https://cms.fitnova.club/wp-content/uploads/2024/05/hero.jpg",
			want: true,
		},
		{
			name: "Upload Path Fragment On Other Host",
			url:  "https://cdn.example.com/wp-content/uploads/pic.jpg",
			want: true,
		},
		{
			name: "Root Relative Image",
			url:  "/images/club.webp",
			want: true,
		},
		{
			name: "Root Relative Non Image",
			url:  "/about",
			want: false,
		},
		{
			name: "Foreign URL",
			url:  "https://example.com/logo.png",
			want: false,
		},
		{
			name: "Already Proxied",
			url:  ProxyPath + "?url=https%3A%2F%2Fcms.fitnova.club%2Fwp-content%2Fuploads%2Fa.jpg",
			want: false,
		},
		{
			name: "Placeholder",
			url:  PlaceholderImage + "?text=missing",
			want: false,
		},
		{
			name: "Empty",
			url:  "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rw.IsOriginAsset(tt.url))
		})
	}
}

func TestToProxied(t *testing.T) {
	rw := newTestRewriter(t)

	raw := "https://cms.fitnova.club/wp-content/uploads/a.jpg"
	want := ProxyPath + "?url=" + url.QueryEscape(raw)
	assert.Equal(t, want, rw.ToProxied(raw))

	// root-relative paths resolve against the origin first
	assert.Equal(t, ProxyPath+"?url="+url.QueryEscape("https://cms.fitnova.club/images/hero.png"), rw.ToProxied("/images/hero.png"))

	// non-origin urls pass through unchanged
	foreign := "https://example.com/logo.png"
	assert.Equal(t, foreign, rw.ToProxied(foreign))
}

func TestToProxiedIdempotent(t *testing.T) {
	rw := newTestRewriter(t)

	urls := []string{
		"https://cms.fitnova.club/wp-content/uploads/a.jpg",
		"/images/hero.png",
		"https://example.com/logo.png",
		"",
	}

	for _, u := range urls {
		once := rw.ToProxied(u)
		assert.Equal(t, once, rw.ToProxied(once), "ToProxied must be idempotent for %q", u)
	}
}

func TestSafeImageURL(t *testing.T) {
	rw := newTestRewriter(t)

	assert.Equal(t, PlaceholderImage, rw.SafeImageURL(""))
	assert.Equal(t, rw.ToProxied("/a.jpg"), rw.SafeImageURL("/a.jpg"))
}

func TestResolveUpstream(t *testing.T) {
	rw := newTestRewriter(t)

	u, err := rw.ResolveUpstream("/wp-content/uploads/a.jpg")
	assert.NoError(t, err)
	assert.Equal(t, "https://cms.fitnova.club/wp-content/uploads/a.jpg", u.String())
	assert.True(t, rw.OnOrigin(u))

	u, err = rw.ResolveUpstream("https://example.com/pic.jpg")
	assert.NoError(t, err)
	assert.False(t, rw.OnOrigin(u))

	_, err = rw.ResolveUpstream("no-scheme-no-slash")
	assert.Error(t, err)
}
