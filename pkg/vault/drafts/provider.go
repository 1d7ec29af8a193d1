package drafts

import (
	"context"

	"github.com/tendant/vault/pkg/vault"
)

// Provider exposes a Store as a catalog source.
type Provider struct {
	store Store
}

// NewProvider wraps store as a vault.Provider.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

func (p *Provider) Source() vault.Source {
	return vault.SourceDraft
}

// Components returns every draft in canonical form, most recent first.
// Drafts that normalize to an empty id are skipped.
func (p *Provider) Components(ctx context.Context) ([]vault.Component, error) {
	records, err := p.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]vault.Component, 0, len(records))
	for _, r := range records {
		c := vault.Normalize(r)
		if c.ID == "" {
			continue
		}
		c.Source = vault.SourceDraft
		out = append(out, c)
	}
	vault.SortByDate(out)
	return out, nil
}

// Get returns one draft in canonical form.
func (p *Provider) Get(ctx context.Context, id string) (*vault.Component, error) {
	r, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c := vault.Normalize(r)
	c.Source = vault.SourceDraft
	return &c, nil
}
