// Package catalog merges every component source into one deduplicated,
// date-sorted view. Nothing is cached: each call recomputes from the
// providers.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tendant/vault/pkg/vault"
)

// CategorySource lists authored category rows.
type CategorySource interface {
	ListCategories(ctx context.Context) ([]*vault.CategoryRow, error)
}

// Filters narrows a merged listing. Source restricts results to one
// provider after the merge, so an overridden entry never shows up under its
// original source.
type Filters struct {
	vault.ListFilters
	Source vault.Source
}

// Catalog is the aggregation layer over an ordered list of providers.
type Catalog struct {
	providers  []vault.Provider
	categories CategorySource
	logger     *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithProviders appends providers. Order is precedence: on an id collision
// the provider added later wins.
func WithProviders(providers ...vault.Provider) Option {
	return func(c *Catalog) {
		for _, p := range providers {
			if p != nil {
				c.providers = append(c.providers, p)
			}
		}
	}
}

// WithCategorySource sets where authored category rows come from.
func WithCategorySource(src CategorySource) Option {
	return func(c *Catalog) {
		c.categories = src
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New creates a catalog.
func New(options ...Option) (*Catalog, error) {
	c := &Catalog{logger: slog.Default()}
	for _, option := range options {
		option(c)
	}
	if len(c.providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	return c, nil
}

// GetAll returns the merged set: every provider's components, deduplicated by
// id with the later provider winning, sorted by date descending.
func (c *Catalog) GetAll(ctx context.Context) ([]vault.Component, error) {
	index := make(map[string]int)
	var merged []vault.Component

	for _, p := range c.providers {
		components, err := p.Components(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s components: %w", p.Source(), err)
		}
		for _, comp := range components {
			if comp.ID == "" {
				continue
			}
			if comp.Source == "" {
				comp.Source = p.Source()
			}
			if i, ok := index[comp.ID]; ok {
				c.logger.DebugContext(ctx, "component overridden", "id", comp.ID, "by", comp.Source, "was", merged[i].Source)
				merged[i] = comp
				continue
			}
			index[comp.ID] = len(merged)
			merged = append(merged, comp)
		}
	}

	if merged == nil {
		merged = []vault.Component{}
	}
	vault.SortByDate(merged)
	return merged, nil
}

// List returns the merged set narrowed by filters.
func (c *Catalog) List(ctx context.Context, filters Filters) ([]vault.Component, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]vault.Component, 0, len(all))
	for _, comp := range all {
		if filters.Source != "" && comp.Source != filters.Source {
			continue
		}
		if !filters.Match(comp) {
			continue
		}
		out = append(out, comp)
	}
	return out, nil
}

// ByID returns the winning component for id.
func (c *Catalog) ByID(ctx context.Context, id string) (*vault.Component, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	for _, comp := range all {
		if comp.ID == id {
			return &comp, nil
		}
	}
	return nil, &vault.NotFoundError{Kind: "component", Key: id, Err: vault.ErrComponentNotFound}
}

// BySlug returns the component with slug. When two sources disagree on ids
// but share a slug, the most recent one is returned.
func (c *Catalog) BySlug(ctx context.Context, sl string) (*vault.Component, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sl = strings.TrimSpace(sl)
	for _, comp := range all {
		if comp.Slug == sl {
			return &comp, nil
		}
	}
	return nil, &vault.NotFoundError{Kind: "component", Key: sl, Err: vault.ErrComponentNotFound}
}

// ByCategory returns the merged components in category, ignoring case.
func (c *Catalog) ByCategory(ctx context.Context, category string) ([]vault.Component, error) {
	return c.List(ctx, Filters{ListFilters: vault.ListFilters{Category: category}})
}

// Categories derives categories with counts from the merged set and overlays
// authored rows when a CategorySource is configured.
func (c *Catalog) Categories(ctx context.Context) ([]vault.Category, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	derived := vault.Categorize(all)
	if c.categories == nil {
		return derived, nil
	}

	rows, err := c.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authored categories: %w", err)
	}
	return vault.MergeCategories(derived, rows), nil
}

// Tags counts tag usage over the merged set.
func (c *Catalog) Tags(ctx context.Context) ([]vault.TagCount, error) {
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return vault.CountTags(all), nil
}

// Providers returns the configured sources in precedence order.
func (c *Catalog) Providers() []vault.Provider {
	return append([]vault.Provider(nil), c.providers...)
}
