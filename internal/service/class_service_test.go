package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

func TestClassServiceCreateNormalizes(t *testing.T) {
	classes := &fakeClasses{}
	audit := &recordingAudit{}
	svc := NewClassService(classes, newFakeUsers(), audit, nil, zap.NewNop())

	view, err := svc.Create(context.Background(), Actor{ID: 1, IP: "127.0.0.1"}, models.ClassInput{
		ClassCode: " bit2101-a ", CourseID: 3, AcademicYear: "2025", Semester: "1", Venue: strPtr(" "),
	})
	require.NoError(t, err)
	assert.Equal(t, "BIT2101-A", view.ClassCode)
	assert.Equal(t, []string{"CREATE:class"}, audit.actions())
	assert.Equal(t, "127.0.0.1", audit.entries[0].IPAddress)
}

func TestClassServiceCreateValidation(t *testing.T) {
	svc := NewClassService(&fakeClasses{}, newFakeUsers(), nil, nil, zap.NewNop())
	_, err := svc.Create(context.Background(), Actor{ID: 1}, models.ClassInput{ClassCode: "X"})
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestClassServiceAssignLecturer(t *testing.T) {
	classes := &fakeClasses{records: []models.ClassRecord{{ID: 2, ClassCode: "BIT2101-A"}}}
	users := newFakeUsers(
		&models.User{ID: 40, Role: models.RoleLecturer},
		&models.User{ID: 41, Role: models.RoleStudent},
	)
	audit := &recordingAudit{}
	svc := NewClassService(classes, users, audit, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.AssignLecturer(ctx, Actor{ID: 1}, 2, 40)
	require.NoError(t, err)
	require.NotNil(t, classes.assigned[2])
	assert.Equal(t, int64(40), *classes.assigned[2])

	_, err = svc.AssignLecturer(ctx, Actor{ID: 1}, 2, 41)
	assert.Equal(t, "Invalid lecturer ID", appErrors.FromError(err).Message)

	_, err = svc.AssignLecturer(ctx, Actor{ID: 1}, 2, 0)
	assert.Equal(t, "Lecturer ID is required", appErrors.FromError(err).Message)

	_, err = svc.AssignLecturer(ctx, Actor{ID: 1}, 99, 40)
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	_, err = svc.UnassignLecturer(ctx, Actor{ID: 1}, 2)
	require.NoError(t, err)
	assert.Nil(t, classes.assigned[2])
	assert.Equal(t, []string{"ASSIGN:class", "UNASSIGN:class"}, audit.actions())
}

func TestClassServiceDelete(t *testing.T) {
	classes := &fakeClasses{records: []models.ClassRecord{{ID: 2}}}
	audit := &recordingAudit{}
	svc := NewClassService(classes, newFakeUsers(), audit, nil, zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), Actor{ID: 1}, 2))
	assert.Empty(t, classes.records)

	err := svc.Delete(context.Background(), Actor{ID: 1}, 2)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
	assert.Equal(t, []string{"DELETE:class"}, audit.actions())
}

func TestClassServiceListScopes(t *testing.T) {
	classes := &fakeClasses{records: []models.ClassRecord{{ID: 2}}}
	svc := NewClassService(classes, newFakeUsers(), nil, nil, zap.NewNop())

	views, err := svc.List(context.Background(), models.ClassFilter{Scope: models.FacultyScope(1, nil)})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Empty(t, classes.filters)

	_, err = svc.Available(context.Background(), 9, nil, "2")
	require.NoError(t, err)
	require.Len(t, classes.filters, 1)
	require.NotNil(t, classes.filters[0].ViewerID)
	assert.Equal(t, int64(9), *classes.filters[0].ViewerID)
	assert.Equal(t, models.ClassOrderCatalog, classes.filters[0].Order)
}
