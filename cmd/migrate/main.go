package main

import (
	"context"
	"fmt"
	"os"

	"welearn/internal/config"
	"welearn/internal/database"
	"welearn/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var migrator *database.Migrator
	var closeDB func() error

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or roll back the WeLearn schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			db, err := database.NewSQLXOracleDB(cmd.Context(), cfg.GetDSN())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			closeDB = db.Close
			migrator, err = database.NewMigrator(db, database.Migrations, "migrations")
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer logger.Sync()
			if migrator != nil {
				_ = migrator.Close()
			}
			if closeDB != nil {
				return closeDB()
			}
			return nil
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := migrator.Up(cmd.Context())
			if err != nil {
				return err
			}
			logger.Get().Info("Migrations applied", zap.Int("count", n))
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := migrator.Down(cmd.Context(), steps)
			if err != nil {
				return err
			}
			logger.Get().Info("Migrations rolled back", zap.Int("count", n))
			return nil
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to roll back")
	root.AddCommand(down)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := migrator.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	root.SetContext(context.Background())
	return root
}
