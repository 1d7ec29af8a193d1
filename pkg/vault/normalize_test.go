package vault_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/mediatype"
)

func TestNormalize_Defaults(t *testing.T) {
	c := vault.Normalize(nil)
	assert.Equal(t, vault.Code{}, c.Content)
	assert.NotNil(t, c.Tags)
	assert.Empty(t, c.Tags)
	assert.NotNil(t, c.Dependencies)
	assert.Equal(t, mediatype.Unknown, c.MediaType)
	assert.False(t, c.Featured)
}

func TestNormalize_DualFieldCollapse(t *testing.T) {
	raw := vault.Record{
		"id":                  "42",
		"title":               "Glow Card",
		"preview_image":       "/uploads/images/42/a.png",
		"more_information":    "<p>notes</p>",
		"external_source_url": "https://codepen.io/x",
		"is_featured":         "true",
		"created_at":          "2024-03-01T10:00:00Z",
	}
	c := vault.Normalize(raw)

	assert.Equal(t, "/uploads/images/42/a.png", c.PreviewImage)
	assert.Equal(t, "<p>notes</p>", c.MoreInformation)
	assert.Equal(t, "https://codepen.io/x", c.ExternalSourceURL)
	assert.True(t, c.Featured)
	assert.Equal(t, "2024-03-01T10:00:00Z", c.Date)
	assert.Equal(t, "glow-card", c.Slug)
	assert.Equal(t, mediatype.Image, c.MediaType)
}

func TestNormalize_CamelCaseWins(t *testing.T) {
	c := vault.Normalize(vault.Record{
		"previewVideo":  "/v/new.mp4",
		"preview_video": "/v/old.mp4",
		"mediaType":     "",
		"media_type":    "image",
	})
	assert.Equal(t, "/v/new.mp4", c.PreviewVideo)
	// declared image without an image preview is re-derived
	assert.Equal(t, mediatype.Video, c.MediaType)
}

func TestNormalize_NestedRelations(t *testing.T) {
	raw := vault.Record{
		"id":    "n1",
		"title": "Nested",
		"component_tags": []interface{}{
			map[string]interface{}{"tags": map[string]interface{}{"name": "UI"}},
			map[string]interface{}{"tags": map[string]interface{}{"name": "Animation"}},
			map[string]interface{}{"tags": map[string]interface{}{"name": "ui"}},
		},
		"component_content": []interface{}{
			map[string]interface{}{"type": "html", "content": "<div></div>"},
			map[string]interface{}{"type": "css", "content": ".a{}"},
			map[string]interface{}{"type": "external", "content": "https://cdn/gsap.js"},
		},
	}
	c := vault.Normalize(raw)

	assert.Equal(t, []string{"ui", "animation"}, c.Tags)
	assert.Equal(t, vault.Code{HTML: "<div></div>", CSS: ".a{}", ExternalScripts: "https://cdn/gsap.js"}, c.Content)
}

func TestNormalize_ContentShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  vault.Record
		want vault.Code
	}{
		{
			name: "nested object",
			raw:  vault.Record{"content": map[string]interface{}{"html": "h", "js": "j"}},
			want: vault.Code{HTML: "h", JS: "j"},
		},
		{
			name: "json string",
			raw:  vault.Record{"content": `{"css":"c","external_scripts":"e"}`},
			want: vault.Code{CSS: "c", ExternalScripts: "e"},
		},
		{
			name: "flat inline",
			raw:  vault.Record{"html": "h", "css": "c", "js": "j", "externalScripts": "e"},
			want: vault.Code{HTML: "h", CSS: "c", JS: "j", ExternalScripts: "e"},
		},
		{
			name: "null content",
			raw:  vault.Record{"content": nil},
			want: vault.Code{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vault.Normalize(tt.raw).Content)
		})
	}
}

func TestNormalize_TagShapes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, vault.Normalize(vault.Record{"tags": "A, b ,,a"}).Tags)
	assert.Equal(t, []string{"x", "y"}, vault.Normalize(vault.Record{"tags": `["X","y"]`}).Tags)
	assert.Equal(t, []string{"one"}, vault.Normalize(vault.Record{"tags": []interface{}{"One", ""}}).Tags)
	assert.Equal(t, []string{"plain"}, vault.Normalize(vault.Record{"componentTags": []string{"Plain"}}).Tags)
}

func TestNormalize_Idempotent(t *testing.T) {
	raws := []vault.Record{
		{},
		{"title": "Stop Motion Button!", "preview_video": "/uploads/videos/x/a.webm", "tags": []string{"UI", "ui"}},
		{"id": "r", "slug": "Custom Slug", "content": map[string]interface{}{"html": "<b/>"}, "featured": true, "dependencies": []interface{}{"gsap", " "}},
		{"component_tags": []interface{}{map[string]interface{}{"tags": map[string]interface{}{"name": "A"}}}, "source": "registry"},
	}

	for _, raw := range raws {
		once := vault.Normalize(raw)
		twice := vault.Normalize(vault.ToRecord(once))
		assert.Equal(t, once, twice)

		// and through the JSON wire shape
		data, err := json.Marshal(once)
		require.NoError(t, err)
		var decoded vault.Record
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, once, vault.Normalize(decoded))
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"ui", "animation"}, vault.NormalizeTags([]string{"UI", "ui", "Animation"}))
	assert.Equal(t, []string{}, vault.NormalizeTags(nil))
	assert.Equal(t, []string{"a"}, vault.NormalizeTags([]string{"  ", "A "}))
}

func TestDeriveMediaType(t *testing.T) {
	assert.Equal(t, mediatype.Video, vault.DeriveMediaType("i.png", "v.mp4", mediatype.Video))
	assert.Equal(t, mediatype.Image, vault.DeriveMediaType("i.png", "v.mp4", mediatype.Image))
	assert.Equal(t, mediatype.Video, vault.DeriveMediaType("i.png", "v.mp4", mediatype.Unknown))
	assert.Equal(t, mediatype.Image, vault.DeriveMediaType("i.png", "", mediatype.Video))
	assert.Equal(t, mediatype.Unknown, vault.DeriveMediaType("", "", mediatype.Image))
}

func TestPatchFromRecord(t *testing.T) {
	p := vault.PatchFromRecord(vault.Record{
		"preview_image":   "/uploads/images/abc/x.png",
		"tags":            []interface{}{"New", "new"},
		"content":         map[string]interface{}{"css": ".x{}"},
		"regenerate_slug": true,
	})

	require.NotNil(t, p.PreviewImage)
	assert.Equal(t, "/uploads/images/abc/x.png", *p.PreviewImage)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Featured)
	require.NotNil(t, p.Tags)
	assert.Equal(t, []string{"new"}, *p.Tags)
	require.NotNil(t, p.Content)
	assert.Nil(t, p.Content.HTML)
	require.NotNil(t, p.Content.CSS)
	assert.Equal(t, ".x{}", *p.Content.CSS)
	assert.True(t, p.RegenerateSlug)

	c := p.Apply(vault.Component{Title: "T", Content: vault.Code{HTML: "keep"}})
	assert.Equal(t, "keep", c.Content.HTML)
	assert.Equal(t, ".x{}", c.Content.CSS)
	assert.Equal(t, mediatype.Image, c.MediaType)
}

func TestPatchFromRecord_ContentString(t *testing.T) {
	stored := vault.Component{Content: vault.Code{HTML: "<b>", CSS: "b{}", JS: "x()"}}

	p := vault.PatchFromRecord(vault.Record{"content": `{"html":"<i>"}`})
	require.NotNil(t, p.Content)
	assert.Nil(t, p.Content.CSS)
	assert.Nil(t, p.Content.JS)

	c := p.Apply(stored)
	assert.Equal(t, vault.Code{HTML: "<i>", CSS: "b{}", JS: "x()"}, c.Content)

	t.Run("UndecodableStringLeavesContent", func(t *testing.T) {
		p := vault.PatchFromRecord(vault.Record{"content": "not json"})
		assert.Nil(t, p.Content)
		assert.Equal(t, stored.Content, p.Apply(stored).Content)
	})

	t.Run("NullContentLeavesContent", func(t *testing.T) {
		p := vault.PatchFromRecord(vault.Record{"content": nil})
		assert.Nil(t, p.Content)
	})
}

func TestPatchFromRecord_NullTags(t *testing.T) {
	stored := vault.Component{Tags: []string{"ui", "animation"}}

	p := vault.PatchFromRecord(vault.Record{"tags": nil, "title": "Renamed"})
	assert.Nil(t, p.Tags)
	assert.Equal(t, []string{"ui", "animation"}, p.Apply(stored).Tags)

	p = vault.PatchFromRecord(vault.Record{"tags": []interface{}{}})
	require.NotNil(t, p.Tags)
	assert.Empty(t, p.Apply(stored).Tags)
}

func TestCreateRequestFromRecord(t *testing.T) {
	req := vault.CreateRequestFromRecord(vault.Record{
		"title":       " Glow Card ",
		"description": "d",
		"category":    "Cards",
		"tags":        []interface{}{"UI", "ui"},
	})
	assert.Equal(t, "Glow Card", req.Title)
	assert.Empty(t, req.Slug)
	assert.Equal(t, []string{"ui"}, req.Tags)

	req = vault.CreateRequestFromRecord(vault.Record{"title": "x", "slug": "Given Slug"})
	assert.Equal(t, "given-slug", req.Slug)
}
