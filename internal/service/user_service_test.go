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

func TestUserServicePendingApprovals(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Role: models.RoleLecturer},
		&models.User{ID: 2, Role: models.RoleLecturer, Approved: true},
	)
	svc := NewUserService(users, nil, nil, zap.NewNop())

	pending, err := svc.PendingApprovals(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)
	assert.Equal(t, models.StaffRoles, users.listFilter.Roles)
}

func TestUserServiceListRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newFakeUsers(), nil, nil, zap.NewNop())
	role := models.UserRole("dean")
	_, err := svc.List(context.Background(), models.UserFilter{Role: &role})
	assert.Equal(t, "Invalid role", appErrors.FromError(err).Message)
}

func TestUserServiceApproveAndReject(t *testing.T) {
	users := newFakeUsers(
		&models.User{ID: 1, Role: models.RoleLecturer},
		&models.User{ID: 2, Role: models.RoleProgramLeader},
	)
	audit := &recordingAudit{}
	svc := NewUserService(users, audit, nil, zap.NewNop())
	ctx := context.Background()
	actor := Actor{ID: 9}

	require.NoError(t, svc.Approve(ctx, actor, 1))
	assert.True(t, users.byID[1].Approved)

	require.NoError(t, svc.Reject(ctx, actor, 2))
	assert.Equal(t, []int64{2}, users.deleted)

	assert.Equal(t, 404, appErrors.FromError(svc.Approve(ctx, actor, 50)).Status)
	assert.Equal(t, 404, appErrors.FromError(svc.Reject(ctx, actor, 2)).Status)
	assert.Equal(t, []string{"APPROVE:user", "REJECT:user"}, audit.actions())
}

func TestUserServiceUpdateRoleAndFaculty(t *testing.T) {
	users := newFakeUsers(&models.User{ID: 1, Role: models.RoleStudent})
	audit := &recordingAudit{}
	svc := NewUserService(users, audit, nil, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, 400, appErrors.FromError(svc.UpdateRole(ctx, Actor{ID: 9}, 1, "dean")).Status)

	require.NoError(t, svc.UpdateRole(ctx, Actor{ID: 9}, 1, models.RoleLecturer))
	assert.Equal(t, models.RoleLecturer, users.byID[1].Role)

	faculty := int64(0)
	require.NoError(t, svc.UpdateFaculty(ctx, Actor{ID: 9}, 1, &faculty))
	assert.Nil(t, users.byID[1].FacultyID)

	require.Len(t, audit.entries, 2)
	assert.Equal(t, map[string]models.UserRole{"role": models.RoleStudent}, audit.entries[0].OldValues)
}
