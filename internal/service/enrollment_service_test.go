package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

type fakeEnrollments struct {
	rows        map[int64]*models.Enrollment
	created     int
	reactivated []int64
	createErr   error
}

func (f *fakeEnrollments) Find(_ context.Context, studentID, classID int64) (*models.Enrollment, error) {
	for _, e := range f.rows {
		if e.StudentID == studentID && e.ClassID == classID {
			c := *e
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeEnrollments) Create(_ context.Context, studentID, classID int64) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	id := int64(len(f.rows) + 1)
	f.rows[id] = &models.Enrollment{ID: id, StudentID: studentID, ClassID: classID, Status: models.EnrollmentActive}
	return nil
}

func (f *fakeEnrollments) Reactivate(_ context.Context, id int64) error {
	e, ok := f.rows[id]
	if !ok || e.Active() {
		return sql.ErrNoRows
	}
	e.Status = models.EnrollmentActive
	f.reactivated = append(f.reactivated, id)
	return nil
}

func (f *fakeEnrollments) Withdraw(_ context.Context, studentID, classID int64) error {
	for _, e := range f.rows {
		if e.StudentID == studentID && e.ClassID == classID && e.Active() {
			e.Status = models.EnrollmentWithdrawn
			return nil
		}
	}
	return sql.ErrNoRows
}

func newEnrollmentServiceForTest(rows *fakeEnrollments) *EnrollmentService {
	classes := &fakeClassOwnership{classes: map[int64]*models.ClassOwnership{4: {ID: 4}}}
	return NewEnrollmentService(rows, classes, nil, zap.NewNop())
}

func TestEnrollmentServiceLifecycle(t *testing.T) {
	rows := &fakeEnrollments{rows: map[int64]*models.Enrollment{}}
	svc := newEnrollmentServiceForTest(rows)
	ctx := context.Background()

	outcome, err := svc.Enroll(ctx, 9, 4)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentCreated, outcome)

	_, err = svc.Enroll(ctx, 9, 4)
	assert.Equal(t, 409, appErrors.FromError(err).Status)

	require.NoError(t, svc.Withdraw(ctx, 9, 4))

	err = svc.Withdraw(ctx, 9, 4)
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	outcome, err = svc.Enroll(ctx, 9, 4)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentReactivated, outcome)
	assert.Equal(t, 1, rows.created)
	assert.Equal(t, []int64{1}, rows.reactivated)
}

func TestEnrollmentServiceValidation(t *testing.T) {
	rows := &fakeEnrollments{rows: map[int64]*models.Enrollment{}}
	svc := newEnrollmentServiceForTest(rows)
	ctx := context.Background()

	_, err := svc.Enroll(ctx, 9, 0)
	assert.Equal(t, "Class ID is required", appErrors.FromError(err).Message)

	_, err = svc.Enroll(ctx, 9, 77)
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	assert.Equal(t, 400, appErrors.FromError(svc.Withdraw(ctx, 9, -1)).Status)
}

func TestEnrollmentServiceRaceMapsToConflict(t *testing.T) {
	rows := &fakeEnrollments{rows: map[int64]*models.Enrollment{}, createErr: errUnique}
	svc := newEnrollmentServiceForTest(rows)

	_, err := svc.Enroll(context.Background(), 9, 4)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "Already enrolled in this class", appErr.Message)
}
