// Package registry holds the compiled-in component catalog. The set is built
// once and never mutated, so it is safe for concurrent use.
package registry

import (
	"context"
	"strings"
	"sync"

	"github.com/tendant/vault/pkg/vault"
)

// Registry is an immutable, date-sorted set of code-authored components.
type Registry struct {
	components []vault.Component
	bySlug     map[string]int
	byID       map[string]int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the entries compiled into this
// package.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = New(entries)
	})
	return defaultRegistry
}

// New builds a registry from entries. Entries are normalized and stamped
// with SourceRegistry; an entry without an id takes its slug as id. When two
// entries share an id or slug the first one wins.
func New(entries []vault.Component) *Registry {
	r := &Registry{
		bySlug: make(map[string]int, len(entries)),
		byID:   make(map[string]int, len(entries)),
	}

	seenID := make(map[string]bool, len(entries))
	seenSlug := make(map[string]bool, len(entries))
	for _, e := range entries {
		c := vault.Normalize(vault.ToRecord(e))
		if c.ID == "" {
			c.ID = c.Slug
		}
		if c.ID == "" || seenID[c.ID] || seenSlug[c.Slug] {
			continue
		}
		seenID[c.ID] = true
		seenSlug[c.Slug] = true
		c.Source = vault.SourceRegistry
		r.components = append(r.components, c)
	}

	vault.SortByDate(r.components)
	for i, c := range r.components {
		r.bySlug[c.Slug] = i
		r.byID[c.ID] = i
	}
	return r
}

// All returns every component, most recent first.
func (r *Registry) All() []vault.Component {
	out := make([]vault.Component, len(r.components))
	for i, c := range r.components {
		out[i] = c.Clone()
	}
	return out
}

// Len reports the number of components.
func (r *Registry) Len() int {
	return len(r.components)
}

// BySlug returns the component with the given slug.
func (r *Registry) BySlug(sl string) (*vault.Component, error) {
	i, ok := r.bySlug[strings.TrimSpace(sl)]
	if !ok {
		return nil, &vault.NotFoundError{Kind: "component", Key: sl, Err: vault.ErrComponentNotFound}
	}
	c := r.components[i].Clone()
	return &c, nil
}

// ByID returns the component with the given id.
func (r *Registry) ByID(id string) (*vault.Component, error) {
	i, ok := r.byID[strings.TrimSpace(id)]
	if !ok {
		return nil, &vault.NotFoundError{Kind: "component", Key: id, Err: vault.ErrComponentNotFound}
	}
	c := r.components[i].Clone()
	return &c, nil
}

// ByCategory returns the components whose category matches, ignoring case.
func (r *Registry) ByCategory(category string) []vault.Component {
	filter := vault.ListFilters{Category: category}
	out := []vault.Component{}
	for _, c := range r.components {
		if filter.Match(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Categories derives the distinct categories with their counts, sorted by
// name. The first spelling seen in date order names the group.
func (r *Registry) Categories() []vault.Category {
	return vault.Categorize(r.components)
}

// SlugOwner reports which registry component holds sl. It satisfies
// vault.SlugOwner so the dynamic store can avoid registry slugs.
func (r *Registry) SlugOwner(sl string) (string, bool) {
	i, ok := r.bySlug[sl]
	if !ok {
		return "", false
	}
	return r.components[i].ID, true
}

// Source implements vault.Provider.
func (r *Registry) Source() vault.Source {
	return vault.SourceRegistry
}

// Components implements vault.Provider.
func (r *Registry) Components(ctx context.Context) ([]vault.Component, error) {
	return r.All(), nil
}
