// Package drafts keeps pending custom components that have not been moved
// into the dynamic store yet. Drafts are raw records in whatever shape the
// client saved them; they are normalized on read like any other source.
package drafts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tendant/vault/pkg/vault"
)

// Store persists draft records keyed by id.
type Store interface {
	// List returns every draft, oldest first.
	List(ctx context.Context) ([]vault.Record, error)

	// Get returns a draft, or vault.ErrDraftNotFound.
	Get(ctx context.Context, id string) (vault.Record, error)

	// Save inserts or replaces a draft and returns its id. A record
	// without an id is assigned one.
	Save(ctx context.Context, record vault.Record) (string, error)

	// Delete removes a draft, or returns vault.ErrDraftNotFound.
	Delete(ctx context.Context, id string) error
}

// prepare copies record and makes sure it carries an id.
func prepare(record vault.Record) (vault.Record, string) {
	out := make(vault.Record, len(record)+1)
	for k, v := range record {
		out[k] = v
	}
	id, _ := out["id"].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		id = "draft-" + uuid.NewString()
	}
	out["id"] = id
	return out, id
}
