package contentservice

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	return NewTransformer(newTestRewriter(t))
}

func proxied(raw string) string {
	return ProxyPath + "?url=" + url.QueryEscape(raw)
}

func TestTransformHTML_Src(t *testing.T) {
	tf := newTestTransformer(t)

	in := `<p>Hello</p><img src="https://cms.fitnova.club/wp-content/uploads/a.jpg" alt="a">`
	want := `<p>Hello</p><img src="` + proxied("https://cms.fitnova.club/wp-content/uploads/a.jpg") + `" alt="a">`
	assert.Equal(t, want, tf.TransformHTML(in))
}

func TestTransformHTML_SrcForeignPassthrough(t *testing.T) {
	tf := newTestTransformer(t)

	in := `<img src="https://example.com/logo.png">`
	assert.Equal(t, in, tf.TransformHTML(in))
}

func TestTransformHTML_Srcset(t *testing.T) {
	tf := newTestTransformer(t)

	small := "https://cms.fitnova.club/wp-content/uploads/a-300.jpg"
	large := "https://cms.fitnova.club/wp-content/uploads/a-600.jpg"

	in := `<img srcset="` + small + ` 300w,` + large + ` 600w">`
	out := tf.TransformHTML(in)

	assert.Contains(t, out, proxied(small)+" 300w")
	assert.Contains(t, out, proxied(large)+" 600w")
}

func TestTransformHTML_BackgroundImage(t *testing.T) {
	tf := newTestTransformer(t)

	bg := "https://cms.fitnova.club/wp-content/uploads/bg.jpg"
	in := `<div style="background-image:url('` + bg + `')"></div>`
	out := tf.TransformHTML(in)

	assert.Contains(t, out, "background-image: url('"+proxied(bg)+"')")
}

func TestTransformHTML_BareOriginURL(t *testing.T) {
	tf := newTestTransformer(t)

	in := `See cms.fitnova.club/wp-content/uploads/flyer.pdf for details`
	out := tf.TransformHTML(in)

	assert.Contains(t, out, proxied("https://cms.fitnova.club/wp-content/uploads/flyer.pdf"))
	assert.NotContains(t, out, "See cms.fitnova.club/wp-content")
}

func TestTransformHTML_Idempotent(t *testing.T) {
	tf := newTestTransformer(t)

	inputs := []string{
		`<img src="https://cms.fitnova.club/wp-content/uploads/a.jpg">`,
		`<img srcset="https://cms.fitnova.club/wp-content/uploads/a-300.jpg 300w, https://cms.fitnova.club/wp-content/uploads/a-600.jpg 600w">`,
		`<div style="background-image:url(https://cms.fitnova.club/wp-content/uploads/bg.jpg)"></div>`,
		`plain text without any urls`,
		"",
	}

	for _, in := range inputs {
		once := tf.TransformHTML(in)
		assert.Equal(t, once, tf.TransformHTML(once), "TransformHTML must be idempotent for %q", in)
	}
}

func TestTransformFields(t *testing.T) {
	tf := newTestTransformer(t)

	asset := "https://cms.fitnova.club/wp-content/uploads/gallery/one.jpg"

	fields := map[string]any{
		"level":    "Intermedio",
		"duration": "60 min",
		"capacity": float64(20),
		"active":   true,
		"photo":    asset,
		"media": map[string]any{
			"url":   asset,
			"title": "one",
		},
		"images": []any{asset, "not a url"},
		"nested": map[string]any{
			"source_url": asset,
			"deep": map[string]any{
				"image": asset,
			},
		},
	}

	out := tf.TransformFieldMap(fields)

	assert.Equal(t, "Intermedio", out["level"])
	assert.Equal(t, float64(20), out["capacity"])
	assert.Equal(t, true, out["active"])
	assert.Equal(t, proxied(asset), out["photo"])

	media := out["media"].(map[string]any)
	assert.Equal(t, proxied(asset), media["url"])
	assert.Equal(t, "one", media["title"])

	images := out["images"].([]any)
	assert.Equal(t, proxied(asset), images[0])
	assert.Equal(t, "not a url", images[1])

	nested := out["nested"].(map[string]any)
	assert.Equal(t, proxied(asset), nested["source_url"])
	deep := nested["deep"].(map[string]any)
	assert.Equal(t, proxied(asset), deep["image"])
}

func TestTransformFieldsNil(t *testing.T) {
	tf := newTestTransformer(t)

	assert.Nil(t, tf.TransformFieldMap(nil))
	assert.Equal(t, nil, tf.TransformFields(nil))
}
