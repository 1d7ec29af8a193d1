package registry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/mediatype"
	"github.com/tendant/vault/pkg/vault/registry"
)

func TestDefaultRegistry(t *testing.T) {
	reg := registry.Default()
	assert.Same(t, reg, registry.Default())

	all := reg.All()
	require.Len(t, all, reg.Len())
	require.NotEmpty(t, all)

	for i, c := range all {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Slug)
		assert.Equal(t, vault.SourceRegistry, c.Source)
		assert.NotNil(t, c.Tags)
		if i > 0 {
			assert.False(t, vault.ParseDate(c.Date).After(vault.ParseDate(all[i-1].Date)), "sorted most recent first")
		}
	}
	assert.Equal(t, "split-text-reveal", all[0].ID)
}

func TestBySlug(t *testing.T) {
	reg := registry.Default()

	c, err := reg.BySlug("burger-menu-button")
	require.NoError(t, err)
	assert.Equal(t, "Burger Menu Button", c.Title)
	assert.Equal(t, "burger-menu-button", c.ID)

	_, err = reg.BySlug("nope")
	assert.True(t, vault.IsNotFound(err))

	// callers cannot mutate the registry through returned values
	c.Tags[0] = "changed"
	again, err := reg.BySlug("burger-menu-button")
	require.NoError(t, err)
	assert.Equal(t, "menu", again.Tags[0])
}

func TestByCategory(t *testing.T) {
	reg := registry.Default()

	buttons := reg.ByCategory("BUTTONS")
	require.Len(t, buttons, 2)
	assert.Equal(t, "burger-menu-button", buttons[0].ID)
	assert.Equal(t, "magnetic-button", buttons[1].ID)

	assert.Empty(t, reg.ByCategory("missing"))
}

func TestCategories(t *testing.T) {
	cats := registry.Default().Categories()

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Buttons", "Cards", "Scroll", "Text Effects"}, names)
	assert.Equal(t, 2, cats[0].Count)
	assert.Equal(t, "text-effects", cats[3].Slug)
}

func TestNewNormalizesEntries(t *testing.T) {
	reg := registry.New([]vault.Component{
		{Title: "Stop Motion Button!", Category: "buttons", Tags: []string{"UI", "ui"}, Date: "2024-01-01", PreviewVideo: "/v/clip.mp4"},
		{ID: "dup", Title: "First", Date: "2023-01-01"},
		{ID: "dup", Title: "Second", Date: "2025-01-01"},
	})
	require.Equal(t, 2, reg.Len())

	c, err := reg.ByID("stop-motion-button")
	require.NoError(t, err)
	assert.Equal(t, "stop-motion-button", c.Slug)
	assert.Equal(t, []string{"ui"}, c.Tags)
	assert.Equal(t, mediatype.Video, c.MediaType)
	assert.Equal(t, vault.Code{}, c.Content)

	dup, err := reg.ByID("dup")
	require.NoError(t, err)
	assert.Equal(t, "First", dup.Title)

	owner, ok := reg.SlugOwner("stop-motion-button")
	assert.True(t, ok)
	assert.Equal(t, "stop-motion-button", owner)
	_, ok = reg.SlugOwner("other")
	assert.False(t, ok)
}

func TestProvider(t *testing.T) {
	var p vault.Provider = registry.Default()
	assert.Equal(t, vault.SourceRegistry, p.Source())

	list, err := p.Components(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, registry.Default().Len())
}
