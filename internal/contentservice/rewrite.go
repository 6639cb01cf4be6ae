package contentservice

import (
	"fmt"
	"net/url"
	"strings"
)

// ProxyPath is the local endpoint origin assets are rewritten to.
const ProxyPath = "/v1/media/proxy"

// PlaceholderImage is served in place of assets that are missing or could
// not be fetched. The presentation layer always needs something renderable
// in an image slot.
const PlaceholderImage = "/placeholder.svg"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif", ".svg"}

// Rewriter classifies URLs against the configured content origin and
// rewrites matching ones to route through the media proxy endpoint. All
// methods are pure string functions.
type Rewriter struct {
	origin *url.URL
}

// NewRewriter builds a Rewriter from the origin base URL. Only the scheme
// and host are kept; an API path suffix such as /wp-json is ignored.
func NewRewriter(originBase string) (*Rewriter, error) {
	u, err := url.Parse(originBase)
	if err != nil {
		return nil, fmt.Errorf("could not parse origin base URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("origin base URL %q has no host", originBase)
	}

	return &Rewriter{origin: &url.URL{Scheme: u.Scheme, Host: u.Host}}, nil
}

// Origin returns the scheme://host form of the configured content origin.
func (rw *Rewriter) Origin() string {
	return rw.origin.String()
}

func (rw *Rewriter) Host() string {
	return rw.origin.Host
}

// IsProxied reports whether the URL already points at the proxy endpoint or
// at a placeholder asset. Proxying such a URL again would loop.
func (rw *Rewriter) IsProxied(raw string) bool {
	return strings.Contains(raw, ProxyPath) || strings.Contains(raw, PlaceholderImage)
}

// IsOriginAsset reports whether the URL belongs to the content origin: its
// host matches, it carries a known upload-path fragment, or it is a
// root-relative path ending in an image extension.
func (rw *Rewriter) IsOriginAsset(raw string) bool {
	if raw == "" || rw.IsProxied(raw) {
		return false
	}

	if strings.Contains(raw, rw.origin.Host) {
		return true
	}
	if strings.Contains(raw, "wp-content/uploads") || strings.Contains(raw, "/uploads/") {
		return true
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && hasImageExtension(raw) {
		return true
	}

	return false
}

// ToProxied rewrites an origin asset URL to route through the proxy
// endpoint, resolving root-relative paths against the origin first.
// Non-origin and already-proxied URLs pass through unchanged, so the
// function is idempotent.
func (rw *Rewriter) ToProxied(raw string) string {
	if !rw.IsOriginAsset(raw) {
		return raw
	}

	full := raw
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		full = rw.origin.String() + raw
	}

	return ProxyPath + "?url=" + url.QueryEscape(full)
}

// SafeImageURL maps a missing URL to the placeholder and any other URL
// through ToProxied.
func (rw *Rewriter) SafeImageURL(raw string) string {
	if raw == "" {
		return PlaceholderImage
	}
	return rw.ToProxied(raw)
}

// ResolveUpstream turns a decoded proxy parameter into an absolute URL,
// resolving root-relative paths against the origin.
func (rw *Rewriter) ResolveUpstream(raw string) (*url.URL, error) {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return rw.origin.Parse(raw)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", raw)
	}
	return u, nil
}

// OnOrigin reports whether the resolved URL points at the content origin.
func (rw *Rewriter) OnOrigin(u *url.URL) bool {
	return u.Host == rw.origin.Host
}

func hasImageExtension(raw string) bool {
	path := raw
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.ToLower(path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
