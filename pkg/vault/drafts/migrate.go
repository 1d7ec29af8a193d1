package drafts

import (
	"context"
	"log/slog"

	"github.com/tendant/vault/pkg/vault"
)

// Creator is the write side of the dynamic store used by Migrate.
type Creator interface {
	CreateComponent(ctx context.Context, req vault.CreateComponentRequest) (*vault.Component, error)
}

// MigrationResult reports what happened to one draft.
type MigrationResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	NewID string `json:"newId,omitempty"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Migrate moves every draft into target, one create per draft, in draft
// order. Drafts that were created are removed from the store; failed ones
// stay for a later attempt. The draft id is not reused, so the dynamic store
// assigns a fresh one. An error is returned only when the drafts cannot be
// listed.
func Migrate(ctx context.Context, store Store, target Creator, logger *slog.Logger) ([]MigrationResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	records, err := store.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]MigrationResult, 0, len(records))
	for _, r := range records {
		req := vault.CreateRequestFromRecord(r)
		res := MigrationResult{ID: req.ID, Title: req.Title}
		req.ID = ""

		created, err := target.CreateComponent(ctx, req)
		if err != nil {
			res.Error = err.Error()
			logger.WarnContext(ctx, "draft migration failed", "draft_id", res.ID, "err", err)
			results = append(results, res)
			continue
		}

		res.OK = true
		res.NewID = created.ID
		if err := store.Delete(ctx, res.ID); err != nil {
			logger.WarnContext(ctx, "failed to remove migrated draft", "draft_id", res.ID, "err", err)
		}
		results = append(results, res)
	}

	logger.InfoContext(ctx, "draft migration finished", "total", len(results), "migrated", countOK(results))
	return results, nil
}

func countOK(results []MigrationResult) int {
	n := 0
	for _, r := range results {
		if r.OK {
			n++
		}
	}
	return n
}
