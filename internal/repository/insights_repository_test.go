package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

func TestInsightsTotals(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInsightsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS active_registration_codes")).
		WillReturnRows(sqlmock.NewRows([]string{"total_faculties", "total_programs", "total_courses", "total_reports",
			"pending_approvals", "active_registration_codes"}).AddRow(3, 5, 12, 40, 2, 4))

	totals, err := repo.Totals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, totals.PendingApprovals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsightsSearchEscapesTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInsightsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM faculties\nWHERE faculty_code ILIKE $1 OR faculty_name ILIKE $1 ORDER BY faculty_name LIMIT 10")).
		WithArgs(`%IC\_T%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name"}).AddRow(2, "FICT", "ICT"))

	hits, err := repo.Search(context.Background(), models.SearchFaculties, "IC_T")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "FICT", *hits[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsightsSearchUnknownGroup(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewInsightsRepository(db)

	_, err := repo.Search(context.Background(), "grades", "ab")
	assert.Error(t, err)
}

func TestInsightsAcademicYears(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewInsightsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UNION")).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year"}).AddRow("2024/2025").AddRow("2023/2024"))

	years, err := repo.AcademicYears(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2024/2025", "2023/2024"}, years)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]int

	assert.False(t, repo.Enabled())
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "dashboard:*"))
	assert.NoError(t, repo.Ping(context.Background()))
	assert.NoError(t, repo.Close())
}
