package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

type fakeAnnouncements struct {
	filter  models.AnnouncementFilter
	created []models.AnnouncementInput
}

func (f *fakeAnnouncements) List(_ context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	f.filter = filter
	return nil, nil
}

func (f *fakeAnnouncements) Create(_ context.Context, input models.AnnouncementInput, _ int64) (int64, error) {
	f.created = append(f.created, input)
	return int64(len(f.created)), nil
}

func (f *fakeAnnouncements) Delete(_ context.Context, id int64) error {
	if id > int64(len(f.created)) {
		return sql.ErrNoRows
	}
	return nil
}

func TestAnnouncementServiceCreate(t *testing.T) {
	repo := &fakeAnnouncements{}
	audit := &recordingAudit{}
	svc := NewAnnouncementService(repo, nil, audit, nil, zap.NewNop())

	created, err := svc.Create(context.Background(), Actor{ID: 4}, models.AnnouncementInput{Title: " Exams ", Body: "Week 12"})
	require.NoError(t, err)
	assert.Equal(t, "Exams", created.Title)
	assert.False(t, created.PublishedAt.IsZero())
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, int64(4), *created.CreatedBy)
	assert.Equal(t, []string{"CREATE:announcement"}, audit.actions())
}

func TestAnnouncementServiceCreateValidation(t *testing.T) {
	svc := NewAnnouncementService(&fakeAnnouncements{}, nil, nil, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, Actor{ID: 4}, models.AnnouncementInput{Title: "  ", Body: "x"})
	assert.Equal(t, "Title and body are required", appErrors.FromError(err).Message)

	published := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	expires := published.Add(-time.Hour)
	_, err = svc.Create(ctx, Actor{ID: 4}, models.AnnouncementInput{Title: "a", Body: "b", PublishedAt: &published, ExpiresAt: &expires})
	assert.Equal(t, "Expiry must be after publication", appErrors.FromError(err).Message)
}

func TestAnnouncementServiceListAndDelete(t *testing.T) {
	repo := &fakeAnnouncements{}
	svc := NewAnnouncementService(repo, nil, nil, nil, zap.NewNop())
	faculty := int64(2)

	rows, err := svc.List(context.Background(), &faculty)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Equal(t, 100, repo.filter.Limit)
	assert.False(t, repo.filter.ActiveOnly)

	assert.Equal(t, 404, appErrors.FromError(svc.Delete(context.Background(), Actor{ID: 4}, 3)).Status)
}
