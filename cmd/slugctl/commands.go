package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Condfire/petadot/internal/auth"
	"github.com/Condfire/petadot/internal/bootstrap"
	"github.com/Condfire/petadot/internal/config"
	"github.com/Condfire/petadot/internal/domain"
	"github.com/Condfire/petadot/internal/slug"
)

// newRootCmd builds the command tree. Tests call it directly with SetArgs.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "slugctl",
		Short: "Inspect and maintain petadot slugs",
		Long: `slugctl previews, resolves and backfills record slugs.

Commands that touch the store (resolve, backfill, migrate) and token read
the same environment as the API server: STORE_DRIVER, DATABASE_URL,
JWT_SECRET and the SLUG_* settings.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newNormalizeCmd(),
		newGenerateCmd(),
		newResolveCmd(),
		newBackfillCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return root
}

// slugFlags are the inputs shared by normalize and generate.
type slugFlags struct {
	name, label, city, state string
}

func (f *slugFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "record name")
	cmd.Flags().StringVar(&f.label, "type", "", "label used when the name cleans to nothing")
	cmd.Flags().StringVar(&f.city, "city", "", "city")
	cmd.Flags().StringVar(&f.state, "state", "", "state")
}

func newNormalizeCmd() *cobra.Command {
	var (
		f             slugFlags
		disambiguator string
	)
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print the base slug for the given parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug.Normalize(f.name, f.label, f.city, f.state, disambiguator))
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&disambiguator, "disambiguator", "", "trailing segment")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		f    slugFlags
		year int
		id   string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the batch slug built from the parts, year and id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), slug.GenerateSlug(f.name, f.label, f.city, f.state, year, id))
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "year segment, omitted when 0")
	cmd.Flags().StringVar(&id, "id", "", "record id; its first characters are appended")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var (
		collection string
		exclude    string
	)
	cmd := &cobra.Command{
		Use:   "resolve <base>",
		Short: "Print the first free slug for base in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := domain.ParseCollection(collection)
			if err != nil {
				return err
			}
			excludeID := uuid.Nil
			if exclude != "" {
				if excludeID, err = uuid.Parse(exclude); err != nil {
					return fmt.Errorf("--exclude-id: %w", err)
				}
			}
			base := args[0]
			if !slug.Valid(base) {
				return fmt.Errorf("%q is not a valid slug; run normalize first", base)
			}

			return withServices(cmd, func(ctx context.Context, rt cmdEnv) error {
				resolved, err := rt.svcs.Slugs.Resolve(ctx, c, excludeID, base)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resolved)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "collection to resolve in (required)")
	cmd.Flags().StringVar(&exclude, "exclude-id", "", "record whose own slug does not count as taken")
	_ = cmd.MarkFlagRequired("collection")
	return cmd
}

func newBackfillCmd() *cobra.Command {
	var (
		names     []string
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Assign slugs to records that have none and print a JSON report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			collections := make([]domain.Collection, 0, len(names))
			for _, n := range names {
				c, err := domain.ParseCollection(n)
				if err != nil {
					return err
				}
				collections = append(collections, c)
			}

			return withServices(cmd, func(ctx context.Context, rt cmdEnv) error {
				if batchSize < 1 {
					batchSize = rt.cfg.BackfillBatchSize
				}
				report, err := rt.svcs.Backfill.Run(ctx, collections, batchSize)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			})
		},
	}
	cmd.Flags().StringSliceVar(&names, "collection", nil, "collections to backfill (repeatable; default all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "records listed per query (0 uses BACKFILL_BATCH_SIZE)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd, func(ctx context.Context, rt cmdEnv) error {
				if rt.store.Pool == nil {
					return fmt.Errorf("migrate needs STORE_DRIVER=%s", config.StoreDriverPostgres)
				}
				return bootstrap.Migrate(ctx, rt.store, rt.log)
			})
		},
	}
}

func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a principal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(subject)
			if err != nil {
				return fmt.Errorf("--sub: %w", err)
			}
			r := domain.Role(role)
			if r != domain.RoleUser && r != domain.RoleAdmin {
				return fmt.Errorf("--role must be %q or %q", domain.RoleUser, domain.RoleAdmin)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			token, err := auth.NewIssuer(cfg.JWTSecret).Issue(domain.Principal{ID: id, Role: r}, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "principal id (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleUser), "user or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}

// cmdEnv is what a store-backed command gets to work with.
type cmdEnv struct {
	cfg   config.Config
	store *bootstrap.Store
	svcs  bootstrap.Services
	log   *slog.Logger
}

// withServices loads config, opens the store and runs fn with the wired
// services. The store is closed when fn returns.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, rt cmdEnv) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(ctx, cmdEnv{cfg: cfg, store: store, svcs: bootstrap.NewServices(store.Records, cfg, log), log: log})
}

// logger writes to stderr so stdout stays machine-readable.
func logger(cmd *cobra.Command) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
}
