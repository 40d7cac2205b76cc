package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"package-tracking-service/internal/adapters/repositories"
	"package-tracking-service/internal/config"
	"package-tracking-service/internal/platform/db"
	"package-tracking-service/internal/platform/obs"
	"package-tracking-service/internal/services"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "dbtool",
		Short:        "Manage the package tracking database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env file is normal outside local development.
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := obs.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(a.newMigrateCmd(), a.newSeedCmd())
	return rootCmd
}

func (a *app) newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.openSQL()
			if err != nil {
				return err
			}
			defer conn.Close()

			a.logger.Info().Str("driver", a.cfg.DBDriver).Msg("applying migrations")
			if err := db.Migrate(conn, a.cfg.DBDriver); err != nil {
				return err
			}

			version, err := db.Version(conn, a.cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := a.openSQL()
			if err != nil {
				return err
			}
			defer conn.Close()

			version, err := db.Version(conn, a.cfg.DBDriver)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	})

	return cmd
}

func (a *app) newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create packages from a JSON file, skipping existing tracking numbers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = a.cfg.SeedPath
			}
			if a.cfg.DBDriver == db.DriverMemory {
				return fmt.Errorf("seed: driver %q does not persist data", db.DriverMemory)
			}

			repo, closeRepo, err := repositories.OpenPackageRepository(a.cfg.DBDriver, a.cfg.DSN())
			if err != nil {
				return err
			}
			defer closeRepo()

			svc := services.NewPackageService(repo, nil, a.cfg.ListMaxLimit)
			res, err := services.SeedFromJSON(cmd.Context(), svc, file)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d packages (%d skipped)\n", res.Created, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (default SEED_PATH)")

	return cmd
}

func (a *app) openSQL() (*sql.DB, error) {
	if a.cfg.DBDriver == db.DriverMemory {
		return nil, fmt.Errorf("driver %q has no schema", db.DriverMemory)
	}
	return db.Open(a.cfg.DBDriver, a.cfg.DSN())
}
