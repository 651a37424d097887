package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

func TestEnrollmentFind(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM student_enrollments WHERE student_id = $1 AND class_id = $2")).
		WithArgs(int64(8), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "class_id", "enrollment_status", "enrolled_at"}).
			AddRow(3, 8, 1, models.EnrollmentWithdrawn, time.Now()))

	enrollment, err := repo.Find(context.Background(), 8, 1)
	require.NoError(t, err)
	assert.False(t, enrollment.Active())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentReactivate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET enrollment_status = 'active', enrolled_at = NOW() WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reactivate(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentWithdrawWithoutActiveRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("SET enrollment_status = 'withdrawn'")).
		WithArgs(int64(8), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Withdraw(context.Background(), 8, 1), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
