package contentservice

import (
	"regexp"
	"strings"
)

// Transformer rewrites embedded asset references inside rendered HTML
// fragments and free-form field trees. It never parses HTML into a tree;
// everything is plain string substitution, safe to run more than once.
type Transformer struct {
	rw *Rewriter

	srcRe        *regexp.Regexp
	srcsetRe     *regexp.Regexp
	bgRe         *regexp.Regexp
	absUploadRe  *regexp.Regexp
	bareUploadRe *regexp.Regexp
}

func NewTransformer(rw *Rewriter) *Transformer {
	host := regexp.QuoteMeta(rw.Host())

	return &Transformer{
		rw:           rw,
		srcRe:        regexp.MustCompile(`src="([^"]+)"`),
		srcsetRe:     regexp.MustCompile(`srcset="([^"]+)"`),
		bgRe:         regexp.MustCompile(`background-image:\s*url\(\s*['"]?([^'")]+)['"]?\s*\)`),
		absUploadRe:  regexp.MustCompile(`https?://` + host + `/wp-content/uploads/[^"'\s)]+`),
		bareUploadRe: regexp.MustCompile(host + `/wp-content/uploads/[^"'\s)]+`),
	}
}

// TransformHTML rewrites every origin asset reference in the fragment:
// src and srcset attributes, inline background-image styles, and bare
// origin upload URLs sitting in text. Non-matching text is left untouched.
func (t *Transformer) TransformHTML(html string) string {
	if html == "" {
		return html
	}

	out := t.absUploadRe.ReplaceAllStringFunc(html, t.rw.ToProxied)

	out = t.srcRe.ReplaceAllStringFunc(out, func(m string) string {
		u := m[len(`src="`) : len(m)-1]
		return `src="` + t.rw.ToProxied(u) + `"`
	})

	out = t.srcsetRe.ReplaceAllStringFunc(out, func(m string) string {
		inner := m[len(`srcset="`) : len(m)-1]
		return `srcset="` + t.transformSrcset(inner) + `"`
	})

	out = t.bgRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := t.bgRe.FindStringSubmatch(m)
		if sub == nil {
			return m
		}
		return "background-image: url('" + t.rw.ToProxied(sub[1]) + "')"
	})

	// catch-all for origin URLs not wrapped in an attribute
	out = t.bareUploadRe.ReplaceAllStringFunc(out, func(m string) string {
		full := m
		if !strings.HasPrefix(m, "http") {
			full = "https://" + m
		}
		return t.rw.ToProxied(full)
	})

	return out
}

// transformSrcset rewrites each comma-separated candidate independently,
// preserving its width or density descriptor.
func (t *Transformer) transformSrcset(srcset string) string {
	parts := strings.Split(srcset, ",")
	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			parts[i] = trimmed
			continue
		}
		u, desc, found := strings.Cut(trimmed, " ")
		if found {
			parts[i] = t.rw.ToProxied(u) + " " + desc
		} else {
			parts[i] = t.rw.ToProxied(u)
		}
	}
	return strings.Join(parts, ", ")
}

// TransformFields walks a decoded-JSON value depth-first. String leaves
// that look like origin assets are rewritten; other strings run through
// TransformHTML; url-shaped map keys are rewritten directly; arrays map
// element-wise. Unrecognized shapes pass through unmodified so a single
// malformed field never blanks out the whole tree.
func (t *Transformer) TransformFields(v any) any {
	switch val := v.(type) {
	case string:
		if t.rw.IsOriginAsset(val) {
			return t.rw.ToProxied(val)
		}
		return t.TransformHTML(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = t.TransformFields(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if s, ok := item.(string); ok && (k == "url" || k == "source_url") {
				out[k] = t.rw.ToProxied(s)
				continue
			}
			out[k] = t.TransformFields(item)
		}
		return out
	default:
		return v
	}
}

// TransformFieldMap is TransformFields over an acf-style field bag.
func (t *Transformer) TransformFieldMap(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out, ok := t.TransformFields(fields).(map[string]any)
	if !ok {
		return fields
	}
	return out
}
