package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/vault/pkg/vault"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements vault.Repository using PostgreSQL. Records come back
// in the relational shape: snake_case columns with nested component_tags and
// component_content relations.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Connect opens a pool and verifies it with a ping. A non-empty schema is
// set as the search_path of every connection.
func Connect(ctx context.Context, dsn, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	setSearchPath(cfg.ConnConfig, schema)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return pool, nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return fmt.Errorf("%s: slug already in use: %w", operation, vault.ErrDuplicate)
			}
			return fmt.Errorf("%s: %w", operation, vault.ErrDuplicate)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced record not found: %w", operation, vault.ErrComponentNotFound)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const recordSelect = `
	SELECT json_build_object(
		'id', c.id,
		'slug', c.slug,
		'title', c.title,
		'description', c.description,
		'category', c.category,
		'author', c.author,
		'date', c.date,
		'preview_image', c.preview_image,
		'preview_video', c.preview_video,
		'media_type', c.media_type,
		'implementation', c.implementation,
		'more_information', c.more_information,
		'external_source_url', c.external_source_url,
		'featured', c.featured,
		'dependencies', c.dependencies,
		'created_at', c.created_at,
		'updated_at', c.updated_at,
		'component_tags', COALESCE((
			SELECT json_agg(json_build_object('tags', json_build_object('id', t.id, 'name', t.name)) ORDER BY ct.position)
			FROM component_tags ct JOIN tags t ON t.id = ct.tag_id
			WHERE ct.component_id = c.id), '[]'::json),
		'component_content', COALESCE((
			SELECT json_agg(json_build_object('type', cc.type, 'content', cc.content))
			FROM component_content cc
			WHERE cc.component_id = c.id), '[]'::json)
	)
	FROM components c`

func scanRecord(row pgx.Row) (vault.Record, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		return nil, err
	}
	var rec vault.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode component record: %w", err)
	}
	return rec, nil
}

// Component operations

func (r *Repository) ListComponents(ctx context.Context, filters vault.ListFilters) ([]vault.Record, error) {
	var (
		where []string
		args  []interface{}
	)
	if filters.Featured != nil {
		args = append(args, *filters.Featured)
		where = append(where, fmt.Sprintf("c.featured = $%d", len(args)))
	}
	if category := strings.TrimSpace(filters.Category); category != "" {
		args = append(args, category)
		where = append(where, fmt.Sprintf("lower(c.category) = lower($%d)", len(args)))
	}
	if tag := vault.NormalizeTag(filters.Tag); tag != "" {
		args = append(args, tag)
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM component_tags ct JOIN tags t ON t.id = ct.tag_id
			WHERE ct.component_id = c.id AND t.name = $%d)`, len(args)))
	}

	query := recordSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list components", err)
	}
	defer rows.Close()

	var result []vault.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list components", err)
	}
	return result, nil
}

func (r *Repository) GetComponent(ctx context.Context, id string) (vault.Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, recordSelect+" WHERE c.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vault.ErrComponentNotFound
		}
		return nil, r.handlePostgresError("get component", err)
	}
	return rec, nil
}

func (r *Repository) FindComponentBySlug(ctx context.Context, slug string) (vault.Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, recordSelect+" WHERE c.slug = $1", slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, vault.ErrComponentNotFound
		}
		return nil, r.handlePostgresError("find component by slug", err)
	}
	return rec, nil
}

func (r *Repository) CreateComponent(ctx context.Context, row *vault.ComponentRow) error {
	query := `
		INSERT INTO components (
			id, slug, title, description, category, author, date,
			preview_image, preview_video, media_type, implementation,
			more_information, external_source_url, featured, dependencies,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := r.db.Exec(ctx, query,
		row.ID, row.Slug, row.Title, row.Description, row.Category, row.Author, row.Date,
		row.PreviewImage, row.PreviewVideo, mediaType(row.MediaType), row.Implementation,
		row.MoreInformation, row.ExternalSourceURL, row.Featured, dependencies(row.Dependencies),
		row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create component", err)
	}
	return nil
}

func (r *Repository) UpdateComponent(ctx context.Context, row *vault.ComponentRow) error {
	query := `
		UPDATE components SET
			slug = $2, title = $3, description = $4, category = $5, author = $6,
			date = $7, preview_image = $8, preview_video = $9, media_type = $10,
			implementation = $11, more_information = $12, external_source_url = $13,
			featured = $14, dependencies = $15, updated_at = $16
		WHERE id = $1`

	updatedAt := row.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tag, err := r.db.Exec(ctx, query,
		row.ID, row.Slug, row.Title, row.Description, row.Category, row.Author,
		row.Date, row.PreviewImage, row.PreviewVideo, mediaType(row.MediaType),
		row.Implementation, row.MoreInformation, row.ExternalSourceURL,
		row.Featured, dependencies(row.Dependencies), updatedAt)
	if err != nil {
		return r.handlePostgresError("update component", err)
	}
	if tag.RowsAffected() == 0 {
		return vault.ErrComponentNotFound
	}
	return nil
}

func (r *Repository) DeleteComponent(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM components WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete component", err)
	}
	if tag.RowsAffected() == 0 {
		return vault.ErrComponentNotFound
	}
	return nil
}

// Content operations

func (r *Repository) ListContent(ctx context.Context, componentID string) ([]*vault.ContentRow, error) {
	query := `
		SELECT component_id, type, content, updated_at
		FROM component_content
		WHERE component_id = $1
		ORDER BY array_position(ARRAY['html', 'css', 'js', 'external'], type)`

	rows, err := r.db.Query(ctx, query, componentID)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	var result []*vault.ContentRow
	for rows.Next() {
		var row vault.ContentRow
		var section string
		if err := rows.Scan(&row.ComponentID, &section, &row.Body, &row.UpdatedAt); err != nil {
			return nil, err
		}
		row.Type = vault.ContentSection(section)
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	return result, nil
}

func (r *Repository) CreateContent(ctx context.Context, row *vault.ContentRow) error {
	query := `
		INSERT INTO component_content (component_id, type, content, updated_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, row.ComponentID, string(row.Type), row.Body, timestamp(row.UpdatedAt))
	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

func (r *Repository) UpdateContent(ctx context.Context, row *vault.ContentRow) error {
	query := `
		UPDATE component_content SET content = $3, updated_at = $4
		WHERE component_id = $1 AND type = $2`

	tag, err := r.db.Exec(ctx, query, row.ComponentID, string(row.Type), row.Body, timestamp(row.UpdatedAt))
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return vault.ErrContentNotFound
	}
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, componentID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM component_content WHERE component_id = $1`, componentID)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	return nil
}

// Tag operations

func (r *Repository) GetOrCreateTag(ctx context.Context, name string) (*vault.Tag, error) {
	name = vault.NormalizeTag(name)
	if name == "" {
		return nil, fmt.Errorf("tag name is empty")
	}

	// the no-op update makes RETURNING yield the existing row on conflict
	query := `
		INSERT INTO tags (id, name, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	var tag vault.Tag
	err := r.db.QueryRow(ctx, query, uuid.New(), name, time.Now().UTC()).Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err != nil {
		return nil, r.handlePostgresError("get or create tag", err)
	}
	return &tag, nil
}

func (r *Repository) LinkTag(ctx context.Context, componentID string, tagID uuid.UUID) error {
	query := `
		INSERT INTO component_tags (component_id, tag_id, position)
		VALUES ($1, $2, (SELECT COALESCE(MAX(position) + 1, 0) FROM component_tags WHERE component_id = $1))
		ON CONFLICT (component_id, tag_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, componentID, tagID); err != nil {
		return r.handlePostgresError("link tag", err)
	}
	return nil
}

func (r *Repository) UnlinkTags(ctx context.Context, componentID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM component_tags WHERE component_id = $1`, componentID); err != nil {
		return r.handlePostgresError("unlink tags", err)
	}
	return nil
}

func (r *Repository) ListComponentTags(ctx context.Context, componentID string) ([]*vault.Tag, error) {
	query := `
		SELECT t.id, t.name, t.created_at
		FROM component_tags ct JOIN tags t ON t.id = ct.tag_id
		WHERE ct.component_id = $1
		ORDER BY ct.position`

	return r.queryTags(ctx, "list component tags", query, componentID)
}

func (r *Repository) ListTags(ctx context.Context) ([]*vault.Tag, error) {
	return r.queryTags(ctx, "list tags", `SELECT id, name, created_at FROM tags ORDER BY name`)
}

func (r *Repository) queryTags(ctx context.Context, op, query string, args ...interface{}) ([]*vault.Tag, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError(op, err)
	}
	defer rows.Close()

	result := []*vault.Tag{}
	for rows.Next() {
		var tag vault.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError(op, err)
	}
	return result, nil
}

// Category operations

func (r *Repository) ListCategories(ctx context.Context) ([]*vault.CategoryRow, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, description, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, r.handlePostgresError("list categories", err)
	}
	defer rows.Close()

	result := []*vault.CategoryRow{}
	for rows.Next() {
		var row vault.CategoryRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Slug, &row.Description, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list categories", err)
	}
	return result, nil
}

func (r *Repository) CreateCategory(ctx context.Context, row *vault.CategoryRow) error {
	query := `
		INSERT INTO categories (id, name, slug, description, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query, row.ID, row.Name, row.Slug, row.Description, timestamp(row.CreatedAt))
	if err != nil {
		return r.handlePostgresError("create category", err)
	}
	return nil
}

func mediaType(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func dependencies(deps []string) []string {
	if deps == nil {
		return []string{}
	}
	return deps
}

func timestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

var _ vault.Repository = (*Repository)(nil)
