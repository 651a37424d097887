package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/repository"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/config"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	"github.com/noah-isme/luct-reporting-api/pkg/logger"
)

// env holds what commands need; tests replace the pieces that touch the database.
type env struct {
	loadConfig func() (*config.Config, error)
	openDB     func(cfg config.DatabaseConfig) (*sqlx.DB, error)
	migrate    func(ctx context.Context, db *sqlx.DB, command string, logger *zap.Logger) error
	seed       func(ctx context.Context, db *sqlx.DB, cfg *config.Config, logger *zap.Logger) (service.SeedSummary, error)
}

func defaultEnv() env {
	return env{
		loadConfig: config.Load,
		openDB:     database.NewPostgres,
		migrate:    database.Migrate,
		seed:       seedDemoData,
	}
}

func newRootCmd(e env) *cobra.Command {
	root := &cobra.Command{
		Use:           "luctctl",
		Short:         "Maintenance tasks for the LUCT reporting database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(e), newSeedCmd(e))
	return root
}

func newMigrateCmd(e env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
	}
	for _, sub := range []struct {
		name  string
		short string
	}{
		{database.MigrateUp, "Apply all pending migrations"},
		{database.MigrateDown, "Roll back the latest migration"},
		{database.MigrateStatus, "Print applied and pending migrations"},
		{database.MigrateReset, "Roll back every migration"},
	} {
		command := sub.name
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, _ []string) error {
				return e.withDB(c.Context(), func(ctx context.Context, db *sqlx.DB, _ *config.Config, log *zap.Logger) error {
					return e.migrate(ctx, db, command, log)
				})
			},
		})
	}
	return cmd
}

func newSeedCmd(e env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert demo faculties, registration codes and users",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return e.withDB(c.Context(), func(ctx context.Context, db *sqlx.DB, cfg *config.Config, log *zap.Logger) error {
				summary, err := e.seed(ctx, db, cfg, log)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "faculties: %d, codes: %d, users created: %d, users updated: %d\n",
					summary.Faculties, summary.Codes, summary.UsersCreated, summary.UsersUpdated)
				return nil
			})
		},
	}
}

func (e env) withDB(ctx context.Context, fn func(ctx context.Context, db *sqlx.DB, cfg *config.Config, log *zap.Logger) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := e.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	db, err := e.openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
	}
	return fn(ctx, db, cfg, log)
}

func seedDemoData(ctx context.Context, db *sqlx.DB, cfg *config.Config, log *zap.Logger) (service.SeedSummary, error) {
	seeder := service.NewSeedService(
		repository.NewFacultyRepository(db),
		repository.NewRegistrationCodeRepository(db),
		repository.NewUserRepository(db),
		service.SeedPasswords{
			Admin:   cfg.Seed.AdminPassword,
			Staff:   cfg.Seed.StaffPassword,
			Student: cfg.Seed.StudentPassword,
		},
		log,
	)
	return seeder.Seed(ctx)
}
