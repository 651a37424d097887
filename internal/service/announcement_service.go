package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

const announcementListLimit = 100

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	Create(ctx context.Context, input models.AnnouncementInput, createdBy int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	audit     AuditRecorder
	cache     *CacheService
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, audit AuditRecorder, cache *CacheService, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, audit: auditOrNop(audit), cache: cache, logger: logger}
}

// List returns announcements newest first, including expired ones.
func (s *AnnouncementService) List(ctx context.Context, facultyID *int64) ([]models.Announcement, error) {
	rows, err := s.repo.List(ctx, models.AnnouncementFilter{FacultyID: facultyID, Limit: announcementListLimit})
	if err != nil {
		return nil, internalError(err, "failed to list announcements")
	}
	if rows == nil {
		rows = []models.Announcement{}
	}
	return rows, nil
}

// Create publishes an announcement, immediately unless PublishedAt says otherwise.
func (s *AnnouncementService) Create(ctx context.Context, actor Actor, input models.AnnouncementInput) (*models.Announcement, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Title and body are required")
	}
	if input.FacultyID != nil && *input.FacultyID <= 0 {
		input.FacultyID = nil
	}
	if input.PublishedAt == nil {
		now := time.Now().UTC()
		input.PublishedAt = &now
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(*input.PublishedAt) {
		return nil, appErrors.Validation("Expiry must be after publication")
	}

	id, err := s.repo.Create(ctx, input, actor.ID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Faculty does not exist")
		}
		return nil, internalError(err, "failed to create announcement")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityAnnouncement, &id, nil, input))
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)

	return &models.Announcement{
		ID:          id,
		FacultyID:   input.FacultyID,
		Title:       input.Title,
		Body:        input.Body,
		PublishedAt: *input.PublishedAt,
		ExpiresAt:   input.ExpiresAt,
		CreatedBy:   &actor.ID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "Announcement not found", "", "", "failed to delete announcement")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityAnnouncement, &id, nil, nil))
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)
	return nil
}
