package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"folio/internal/app"
	"folio/internal/config"
	docsysSvc "folio/internal/domain/services/docsystem"
	"folio/internal/repository"
	"folio/internal/seed"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliContext carries what every subcommand needs
type cliContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

// newApp creates the app from the loaded config. The caller must defer Close.
func (c *cliContext) newApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func newRootCmd() *cobra.Command {
	cli := &cliContext{}
	var envFile string
	var verbose bool

	root := &cobra.Command{
		Use:          "folioctl",
		Short:        "Administer a folio document store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("loading %s: %w", envFile, err)
				}
			} else {
				_ = godotenv.Load()
			}

			cli.cfg = config.Load()
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			cli.logger = slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "environment file to load (default .env if present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newMigrateCmd(cli),
		newSeedCmd(cli),
		newTreeCmd(cli),
		newReconcileCmd(cli),
		newCategoryCmd(cli),
	)
	return root
}

func newMigrateCmd(cli *cliContext) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repository.Open(cmd.Context(), cli.cfg.DatabaseDriver, cli.cfg.DatabaseURL, cli.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if statusOnly {
				if err := store.CheckMigrations(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}

			if err := store.Migrate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s store\n", store.Driver())
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "only check whether the schema is current")
	return cmd
}

func newSeedCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create categories, documents and files from a YAML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}

			a, err := cli.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			seeder := seed.NewSeeder(a.Categories, a.Documents, a.Files, cli.logger)
			result, err := seeder.Apply(cmd.Context(), plan, filepath.Dir(args[0]))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories, %d documents, %d files\n",
				result.Categories, result.Documents, result.Files)
			return nil
		},
	}
}

func newTreeCmd(cli *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print documents and their files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cli.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			tree, err := a.Tree.GetTree(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTree(a.Blobs().Root(), tree))
			return nil
		},
	}
}

func newReconcileCmd(cli *cliContext) *cobra.Command {
	var fix bool
	var format string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare database rows with the blob tree",
		Long: "Reports blobs without rows, rows without blobs, and document directories\n" +
			"without documents (and the reverse). --fix removes orphan blobs and directories\n" +
			"untouched for at least five minutes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cli.newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Reconcile.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeReport(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}

			if fix && !report.Clean() {
				removed, err := a.Reconcile.Fix(cmd.Context(), report)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphan entries\n", removed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "remove orphan blobs and directories")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "report format: yaml or json")
	return cmd
}

func writeReport(w io.Writer, format string, report *docsysSvc.ReconcileReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func newCategoryCmd(cli *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Register a category",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := cli.newApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				category, err := a.Categories.CreateCategory(cmd.Context(),
					&docsysSvc.CreateCategoryRequest{Name: args[0]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", category.ID, category.Name)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := cli.newApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				categories, err := a.Categories.ListCategories(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range categories {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", c.ID, c.Name)
				}
				return nil
			},
		},
	)
	return cmd
}
