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

type enrollmentRepository interface {
	Find(ctx context.Context, studentID, classID int64) (*models.Enrollment, error)
	Create(ctx context.Context, studentID, classID int64) error
	Reactivate(ctx context.Context, id int64) error
	Withdraw(ctx context.Context, studentID, classID int64) error
}

// EnrollmentService lets students join and leave classes.
type EnrollmentService struct {
	enrollments enrollmentRepository
	classes     classOwnershipReader
	cache       *CacheService
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService.
func NewEnrollmentService(enrollments enrollmentRepository, classes classOwnershipReader, cache *CacheService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, classes: classes, cache: cache, logger: logger}
}

// Enroll joins the class, reusing a withdrawn row when one exists.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, classID int64) (models.EnrollmentOutcome, error) {
	if classID <= 0 {
		return 0, appErrors.Validation("Class ID is required")
	}
	if _, err := s.classes.Ownership(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.NotFound("Class not found")
		}
		return 0, internalError(err, "failed to load class")
	}

	existing, err := s.enrollments.Find(ctx, studentID, classID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, internalError(err, "failed to load enrollment")
	}

	outcome := models.EnrollmentCreated
	switch {
	case existing != nil && existing.Active():
		return 0, appErrors.Clone(appErrors.ErrConflict, "Already enrolled in this class")
	case existing != nil:
		if err := s.enrollments.Reactivate(ctx, existing.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, appErrors.Clone(appErrors.ErrConflict, "Already enrolled in this class")
			}
			return 0, internalError(err, "failed to reactivate enrollment")
		}
		outcome = models.EnrollmentReactivated
	default:
		if err := s.enrollments.Create(ctx, studentID, classID); err != nil {
			if database.IsUniqueViolation(err) {
				return 0, conflict(err, "Already enrolled in this class")
			}
			return 0, internalError(err, "failed to enroll")
		}
	}

	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return outcome, nil
}

// Withdraw leaves the class.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID, classID int64) error {
	if classID <= 0 {
		return appErrors.Validation("Class ID is required")
	}
	if err := s.enrollments.Withdraw(ctx, studentID, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NotFound("Enrollment not found or already withdrawn")
		}
		return internalError(err, "failed to withdraw")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return nil
}
