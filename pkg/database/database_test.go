package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/pkg/config"
)

func TestPQErrorHelpers(t *testing.T) {
	dup := fmt.Errorf("insert user: %w", &pq.Error{Code: "23505", Constraint: "users_email_lower_idx"})
	fk := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(dup))
	assert.False(t, IsForeignKeyViolation(dup))
	assert.Equal(t, "users_email_lower_idx", ConstraintName(dup))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(sql.ErrNoRows))
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "luct", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=luct sslmode=disable", dsn)
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	err := Migrate(context.Background(), nil, "sideways", nil)
	assert.Error(t, err)
}

func TestMigrateDelegatesToGoose(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	original := gooseRun
	defer func() { gooseRun = original }()

	var gotCommand, gotDir string
	gooseRun = func(_ context.Context, command string, _ *sql.DB, dir string, _ ...string) error {
		gotCommand, gotDir = command, dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), sqlx.NewDb(db, "sqlmock"), MigrateUp, nil))
	assert.Equal(t, "up", gotCommand)
	assert.Equal(t, ".", gotDir)
}
