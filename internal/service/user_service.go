package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	SetApproved(ctx context.Context, id int64) error
	UpdateRole(ctx context.Context, id int64, role models.UserRole) error
	UpdateFaculty(ctx context.Context, id int64, facultyID *int64) error
	Delete(ctx context.Context, id int64) error
	ListLecturers(ctx context.Context) ([]models.LecturerSummary, error)
}

// UserService handles account administration: approval, role and faculty changes.
type UserService struct {
	repo   userRepository
	audit  AuditRecorder
	cache  *CacheService
	logger *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, audit AuditRecorder, cache *CacheService, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, audit: auditOrNop(audit), cache: cache, logger: logger}
}

// List returns users matching filter, newest first.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.UserInfo, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, appErrors.Validation("Invalid role")
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list users")
	}
	return userInfos(users), nil
}

// PendingApprovals lists staff accounts still waiting for approval.
func (s *UserService) PendingApprovals(ctx context.Context) ([]models.UserInfo, error) {
	approved := false
	return s.List(ctx, models.UserFilter{Roles: models.StaffRoles, Approved: &approved})
}

// Approve lets a pending account log in.
func (s *UserService) Approve(ctx context.Context, actor Actor, id int64) error {
	if err := s.repo.SetApproved(ctx, id); err != nil {
		return storeError(err, "User not found", "", "", "failed to approve user")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionApprove, models.EntityUser, &id, nil, map[string]bool{"approved": true}))
	_ = s.cache.Invalidate(ctx, AnalyticsCachePattern)
	return nil
}

// Reject deletes a pending account.
func (s *UserService) Reject(ctx context.Context, actor Actor, id int64) error {
	before, err := s.user(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "User not found", "", "User still owns records", "failed to reject user")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionReject, models.EntityUser, &id, before.Info(), nil))
	_ = s.cache.Invalidate(ctx, AnalyticsCachePattern)
	return nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, actor Actor, id int64, role models.UserRole) error {
	if !role.Valid() {
		return appErrors.Validation("Invalid role")
	}
	before, err := s.user(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return storeError(err, "User not found", "", "", "failed to update user role")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUpdate, models.EntityUser, &id,
		map[string]models.UserRole{"role": before.Role}, map[string]models.UserRole{"role": role}))
	s.cache.InvalidateAll(ctx, DashboardCachePattern, AnalyticsCachePattern)
	return nil
}

// UpdateFaculty moves a user to facultyID, or to no faculty when nil.
func (s *UserService) UpdateFaculty(ctx context.Context, actor Actor, id int64, facultyID *int64) error {
	if facultyID != nil && *facultyID <= 0 {
		facultyID = nil
	}
	before, err := s.user(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFaculty(ctx, id, facultyID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Faculty does not exist")
		}
		return storeError(err, "User not found", "", "", "failed to update user faculty")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUpdate, models.EntityUser, &id,
		map[string]*int64{"facultyId": before.FacultyID}, map[string]*int64{"facultyId": facultyID}))
	s.cache.InvalidateAll(ctx, DashboardCachePattern, AnalyticsCachePattern)
	return nil
}

// Lecturers lists approved staff available for class assignment.
func (s *UserService) Lecturers(ctx context.Context) ([]models.LecturerSummary, error) {
	lecturers, err := s.repo.ListLecturers(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list lecturers")
	}
	if lecturers == nil {
		lecturers = []models.LecturerSummary{}
	}
	return lecturers, nil
}

func (s *UserService) user(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("User not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	return user, nil
}

func userInfos(users []models.User) []models.UserInfo {
	infos := make([]models.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.Info())
	}
	return infos
}
