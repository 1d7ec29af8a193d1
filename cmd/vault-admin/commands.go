package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tendant/vault/pkg/vault"
	"github.com/tendant/vault/pkg/vault/catalog"
	"github.com/tendant/vault/pkg/vault/config"
	"github.com/tendant/vault/pkg/vault/drafts"
	"github.com/tendant/vault/pkg/vault/repo/postgres"
)

// appLoader builds the catalog the commands run against. Tests swap it.
var appLoader = func(ctx context.Context) (*config.App, error) {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return nil, err
	}
	return cfg.Build(ctx, slog.Default())
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vault-admin",
		Short: "Vault admin CLI - component catalog maintenance",
		Long: `Vault admin CLI

Reads the same environment as vault-server (a .env file in the current
directory is loaded first). Run "vault-admin env" for the variable list.`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewCategoriesCommand())
	rootCmd.AddCommand(NewTagsCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewDraftsCommand())
	rootCmd.AddCommand(NewEnvCommand())

	return rootCmd
}

func NewListCommand() *cobra.Command {
	var category, tag, featured, source string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components from every source",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := catalog.Filters{ListFilters: vault.ListFilters{Category: category, Tag: tag}}
			if featured != "" {
				v, err := strconv.ParseBool(featured)
				if err != nil {
					return fmt.Errorf("invalid --featured: %w", err)
				}
				filters.Featured = &v
			}
			if source != "" {
				filters.Source = vault.ParseSource(source)
				if filters.Source == "" {
					return fmt.Errorf("invalid --source %q (registry, draft or dynamic)", source)
				}
			}

			return withApp(cmd, func(ctx context.Context, app *config.App) error {
				components, err := app.Catalog.List(ctx, filters)
				if err != nil {
					return err
				}
				if useJSON(cmd) {
					return writeJSON(cmd.OutOrStdout(), components)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSLUG\tTITLE\tCATEGORY\tSOURCE\tDATE")
				for _, c := range components {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						truncate(c.ID, 24), c.Slug, truncate(c.Title, 30), c.Category, c.Source, shortDate(c.Date))
				}
				fmt.Fprintf(w, "\n%d component(s)\n", len(components))
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category (case-insensitive)")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	cmd.Flags().StringVar(&featured, "featured", "", "filter by featured flag (true/false)")
	cmd.Flags().StringVar(&source, "source", "", "registry, draft or dynamic")

	return cmd
}

func NewCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories with component counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *config.App) error {
				categories, err := app.Catalog.Categories(ctx)
				if err != nil {
					return err
				}
				if useJSON(cmd) {
					return writeJSON(cmd.OutOrStdout(), categories)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tSLUG\tCOUNT\tDESCRIPTION")
				for _, c := range categories {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.Name, c.Slug, c.Count, truncate(c.Description, 40))
				}
				return w.Flush()
			})
		},
	}
}

func NewTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags by usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *config.App) error {
				tags, err := app.Catalog.Tags(ctx)
				if err != nil {
					return err
				}
				if useJSON(cmd) {
					return writeJSON(cmd.OutOrStdout(), tags)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TAG\tCOUNT")
				for _, t := range tags {
					fmt.Fprintf(w, "%s\t%d\n", t.Name, t.Count)
				}
				return w.Flush()
			})
		},
	}
}

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, schema, err := postgresURL()
			if err != nil {
				return err
			}
			if err := postgres.Migrate(cmd.Context(), dsn, schema); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, schema, err := postgresURL()
			if err != nil {
				return err
			}
			return postgres.MigrationStatus(cmd.Context(), dsn, schema)
		},
	})

	return cmd
}

func NewDraftsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Inspect and migrate pending custom components",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List drafts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *config.App) error {
				list, err := drafts.NewProvider(app.Drafts).Components(ctx)
				if err != nil {
					return err
				}
				if useJSON(cmd) {
					return writeJSON(cmd.OutOrStdout(), list)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tCATEGORY")
				for _, c := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, truncate(c.Title, 30), c.Category)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Move every draft into the dynamic store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *config.App) error {
				results, err := drafts.Migrate(ctx, app.Drafts, app.Service, slog.Default())
				if err != nil {
					return err
				}
				if useJSON(cmd) {
					return writeJSON(cmd.OutOrStdout(), results)
				}

				failed := 0
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "DRAFT\tTITLE\tRESULT")
				for _, r := range results {
					result := "-> " + r.NewID
					if !r.OK {
						failed++
						result = "failed: " + r.Error
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.ID, truncate(r.Title, 30), result)
				}
				fmt.Fprintf(w, "\n%d migrated, %d failed\n", len(results)-failed, failed)
				return w.Flush()
			})
		},
	})

	return cmd
}

func NewEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Describe the environment variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := config.EnvDescription()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), desc)
			return nil
		},
	}
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *config.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := appLoader(ctx)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func postgresURL() (dsn, schema string, err error) {
	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return "", "", err
	}
	if cfg.DatabaseType != config.DatabasePostgres {
		return "", "", fmt.Errorf("DATABASE_URL must point at Postgres to run migrations")
	}
	return cfg.DatabaseURL, cfg.DBSchema, nil
}

func useJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// shortDate keeps the calendar day of an ISO timestamp
func shortDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}
