package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"welearn/internal/config"
	"welearn/internal/database"
	"welearn/internal/dto"
	"welearn/internal/logger"
	"welearn/internal/repository"
	"welearn/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		file  string
		admin dto.AccountRequest
	)

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load the quiz catalogue and an optional first admin",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			defer logger.Sync()
			log := logger.Get()

			categories, err := readSeed(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			quizzes := service.NewQuizService(repository.NewQuizDatabaseAdapter(db), nil, 0)
			n, err := seedQuizzes(ctx, quizzes, repository.NewTransactionManagerAdapter(db), categories, log)
			if err != nil {
				return err
			}
			log.Info("Quiz seeding completed", zap.Int("created", n))

			if admin.Username == "" {
				return nil
			}
			return seedAdmin(ctx, service.NewAdminService(repository.NewSQLXAdminRepository(db)), admin, log)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "seed JSON file (defaults to the built-in catalogue)")
	f.StringVar(&admin.Username, "admin-username", "", "create this admin if missing")
	f.StringVar(&admin.Password, "admin-password", "", "password for --admin-username")
	f.StringVar(&admin.FullName, "admin-name", "WeLearn Admin", "full name for --admin-username")
	f.StringVar(&admin.Email, "admin-email", "admin@welearn.local", "email for --admin-username")
	f.StringVar(&admin.DateOfBirth, "admin-dob", "1990-01-01", "date of birth for --admin-username")
	return cmd
}

func readSeed(path string) ([]seedCategory, error) {
	var r io.ReadCloser
	var err error
	if path == "" {
		r, err = defaultSeed.Open("seed_data/quizzes.json")
	} else {
		r, err = os.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open seed data: %w", err)
	}
	defer r.Close()
	return loadSeed(r)
}
