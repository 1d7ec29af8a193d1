package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/tendant/vault/pkg/vault"
)

func TestHandlePostgresError(t *testing.T) {
	r := &Repository{}

	tests := []struct {
		name    string
		err     error
		is      error
		message string
	}{
		{
			name:    "unique slug",
			err:     &pgconn.PgError{Code: "23505", ConstraintName: "components_slug_key"},
			is:      vault.ErrDuplicate,
			message: "slug already in use",
		},
		{
			name: "unique other",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "components_pkey"},
			is:   vault.ErrDuplicate,
		},
		{
			name: "foreign key",
			err:  &pgconn.PgError{Code: "23503"},
			is:   vault.ErrComponentNotFound,
		},
		{
			name:    "not null",
			err:     &pgconn.PgError{Code: "23502", ColumnName: "title"},
			message: "required field title is missing",
		},
		{
			name:    "undefined table",
			err:     &pgconn.PgError{Code: "42P01"},
			message: "database migration required",
		},
		{
			name:    "other code",
			err:     &pgconn.PgError{Code: "40001", Message: "serialization failure"},
			message: "serialization failure (code: 40001)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.handlePostgresError("create component", tt.err)
			if tt.is != nil {
				assert.True(t, errors.Is(got, tt.is))
			}
			if tt.message != "" {
				assert.Contains(t, got.Error(), tt.message)
			}
		})
	}

	plain := errors.New("connection reset")
	assert.True(t, errors.Is(r.handlePostgresError("list components", plain), plain))
}

func TestColumnDefaults(t *testing.T) {
	assert.Equal(t, "unknown", mediaType(""))
	assert.Equal(t, "video", mediaType("video"))
	assert.Equal(t, []string{}, dependencies(nil))
	assert.False(t, timestamp(time.Time{}).IsZero())
}
