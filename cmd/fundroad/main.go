package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fundroad/fundroad-go/internal/application/container"
	"github.com/fundroad/fundroad-go/internal/application/startup"
	"github.com/fundroad/fundroad-go/internal/infrastructure/content"
	schema "github.com/fundroad/fundroad-go/internal/infrastructure/database"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
	"github.com/fundroad/fundroad-go/pkg/config"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "fundroad",
		Short:   "Fund Road - founder journey API",
		Version: Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(contentCmd())
	rootCmd.AddCommand(secretCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startup.Initialize()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema for DB_DRIVER/DATABASE_URL",
		Long: `Create every table and index the API needs. Statements are idempotent,
so running migrate against an up to date database changes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := container.NewLoggerFromConfig()
			if err != nil {
				return err
			}
			defer logger.Close()

			db, err := container.OpenDatabase(contextOrBackground(cmd), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Printf("Schema ready on %s: %v\n", config.DBDriver, schema.TableNames())
			return nil
		},
	}
}

func contentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Inspect the journey content",
	}

	var dir string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate journey.yaml and financing.yaml",
		Long: `Validate the journey content. Without --dir the embedded documents are
checked; with --dir the documents in that directory are.

Examples:
  fundroad content validate
  fundroad content validate --dir ./content`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := content.Load(dir)
			if err != nil {
				return fmt.Errorf("invalid content: %w", err)
			}
			substeps := 0
			for _, step := range loaded.Catalog.Steps() {
				substeps += len(step.SubSteps)
			}
			fmt.Printf("Content OK: %d steps, %d substeps, %d financing entries\n",
				len(loaded.Catalog.Steps()), substeps, len(loaded.Financing))
			return nil
		},
	}
	validate.Flags().StringVar(&dir, "dir", config.ContentDir, "directory holding journey.yaml and financing.yaml")

	cmd.AddCommand(validate)
	return cmd
}

func secretCmd() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random hex secret suitable for JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := security.GenerateSecureKey(length)
			if err != nil {
				return err
			}
			fmt.Println(secret)
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "n", 64, "secret length in hex characters")
	return cmd
}

// contextOrBackground keeps commands usable when cobra runs without a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
