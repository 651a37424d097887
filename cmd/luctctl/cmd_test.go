package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/config"
)

type recorder struct {
	migrations []string
	seeded     int
}

func testEnv(r *recorder) env {
	return env{
		loadConfig: func() (*config.Config, error) {
			return &config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "error", Format: "console"}}, nil
		},
		openDB: func(config.DatabaseConfig) (*sqlx.DB, error) { return nil, nil },
		migrate: func(_ context.Context, _ *sqlx.DB, command string, _ *zap.Logger) error {
			r.migrations = append(r.migrations, command)
			return nil
		},
		seed: func(context.Context, *sqlx.DB, *config.Config, *zap.Logger) (service.SeedSummary, error) {
			r.seeded++
			return service.SeedSummary{Faculties: 3, Codes: 5, UsersCreated: 5}, nil
		},
	}
}

func run(e env, args ...string) (string, error) {
	cmd := newRootCmd(e)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateSubcommands(t *testing.T) {
	r := &recorder{}
	for _, sub := range []string{"up", "down", "status", "reset"} {
		_, err := run(testEnv(r), "migrate", sub)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"up", "down", "status", "reset"}, r.migrations)
}

func TestMigrateRejectsExtraArgs(t *testing.T) {
	r := &recorder{}
	_, err := run(testEnv(r), "migrate", "up", "now")
	assert.Error(t, err)
	assert.Empty(t, r.migrations)
}

func TestSeedPrintsSummary(t *testing.T) {
	r := &recorder{}
	out, err := run(testEnv(r), "seed")
	require.NoError(t, err)
	assert.Equal(t, 1, r.seeded)
	assert.Contains(t, out, "faculties: 3, codes: 5, users created: 5, users updated: 0")
}

func TestDatabaseErrorsSurface(t *testing.T) {
	e := testEnv(&recorder{})
	e.openDB = func(config.DatabaseConfig) (*sqlx.DB, error) { return nil, errors.New("connection refused") }

	_, err := run(e, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect database: connection refused")
}
