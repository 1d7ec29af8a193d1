package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies every pending migration to the database at dsn. When
// schema is set, the schema is created if needed and both the tables and the
// goose version table live in it, matching the search_path used by Connect.
func Migrate(ctx context.Context, dsn, schema string) error {
	db, err := openDB(dsn, schema)
	if err != nil {
		return err
	}
	defer db.Close()

	if schema != "" {
		if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	return MigrateDB(ctx, db)
}

// MigrateDB applies pending migrations on an open database handle.
func MigrateDB(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	slog.InfoContext(ctx, "database migrations applied")
	return nil
}

// MigrationStatus logs the state of every migration.
func MigrationStatus(ctx context.Context, dsn, schema string) error {
	db, err := openDB(dsn, schema)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	return goose.StatusContext(ctx, db, "migrations")
}

func openDB(dsn, schema string) (*sql.DB, error) {
	cfg, err := migrationConfig(dsn, schema)
	if err != nil {
		return nil, err
	}
	return stdlib.OpenDB(*cfg), nil
}

func migrationConfig(dsn, schema string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	setSearchPath(cfg, schema)
	return cfg, nil
}

func setSearchPath(cfg *pgx.ConnConfig, schema string) {
	if schema != "" {
		cfg.RuntimeParams["search_path"] = schema
	}
}
