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

func newReportServiceForTest(reports *fakeReports, owner int64, active int) *ReportService {
	lecturer := owner
	course, faculty := int64(12), int64(3)
	classes := &fakeClassOwnership{classes: map[int64]*models.ClassOwnership{
		5: {ID: 5, CourseID: &course, FacultyID: &faculty, LecturerID: &lecturer, ActiveEnrolment: active},
	}}
	return NewReportService(reports, classes, nil, nil, zap.NewNop())
}

func validReportRequest() models.CreateReportRequest {
	return models.CreateReportRequest{
		ClassID:          5,
		DateOfLecture:    "2025-03-10",
		StudentsPresent:  intPtr(25),
		TopicTaught:      " Normalisation ",
		LearningOutcomes: "Students can reach 3NF",
	}
}

func TestReportServiceCreateDerivesFields(t *testing.T) {
	reports := &fakeReports{}
	svc := newReportServiceForTest(reports, 7, 30)

	view, err := svc.Create(context.Background(), 7, validReportRequest())
	require.NoError(t, err)
	require.Len(t, reports.created, 1)

	created := reports.created[0]
	assert.Equal(t, 11, created.WeekOfReporting)
	assert.Equal(t, models.DefaultVenue, created.Venue)
	assert.Equal(t, models.DefaultLectureTime, created.ScheduledLectureTime)
	assert.Equal(t, models.ReportStatusSubmitted, created.Status)
	assert.Equal(t, "Normalisation", created.TopicTaught)
	assert.Nil(t, created.Recommendations)

	assert.Equal(t, int64(1), view.ID)
	assert.Equal(t, "2025-03-10", view.DateOfLecture)
	assert.Equal(t, 25, view.ActualStudentsPresent)
}

func TestReportServiceCreateUsesClassSchedule(t *testing.T) {
	lecturer, course := int64(7), int64(12)
	classes := &fakeClassOwnership{classes: map[int64]*models.ClassOwnership{
		5: {ID: 5, CourseID: &course, LecturerID: &lecturer, Venue: strPtr("Hall 4"), ScheduledTime: strPtr("14:00")},
	}}
	reports := &fakeReports{}
	svc := NewReportService(reports, classes, nil, nil, zap.NewNop())

	req := validReportRequest()
	req.StudentsPresent = intPtr(90)
	req.Status = models.ReportStatusDraft
	_, err := svc.Create(context.Background(), 7, req)
	require.NoError(t, err)

	created := reports.created[0]
	assert.Equal(t, "Hall 4", created.Venue)
	assert.Equal(t, "14:00", created.ScheduledLectureTime)
	assert.Equal(t, models.ReportStatusDraft, created.Status)
}

func TestReportServiceCreateRejects(t *testing.T) {
	cases := []struct {
		name    string
		lecture int64
		mutate  func(*models.CreateReportRequest)
		status  int
		message string
	}{
		{"missing topic", 7, func(r *models.CreateReportRequest) { r.TopicTaught = "  " }, 400, "Missing required report fields"},
		{"bad date", 7, func(r *models.CreateReportRequest) { r.DateOfLecture = "10/03/2025" }, 400, "Invalid lecture date"},
		{"negative present", 7, func(r *models.CreateReportRequest) { r.StudentsPresent = intPtr(-1) }, 400, "Students present cannot be negative"},
		{"unknown status", 7, func(r *models.CreateReportRequest) { r.Status = "approved" }, 400, "Status must be draft or submitted"},
		{"over capacity", 7, func(r *models.CreateReportRequest) { r.StudentsPresent = intPtr(31) }, 400, "Students present cannot exceed registered students"},
		{"someone else's class", 8, func(*models.CreateReportRequest) {}, 404, "Class not found"},
		{"unknown class", 7, func(r *models.CreateReportRequest) { r.ClassID = 99 }, 404, "Class not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := &fakeReports{}
			svc := newReportServiceForTest(reports, 7, 30)
			req := validReportRequest()
			tc.mutate(&req)

			_, err := svc.Create(context.Background(), tc.lecture, req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.status, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
			assert.Empty(t, reports.created)
		})
	}
}

func TestReportServiceCreateClassWithoutCourse(t *testing.T) {
	lecturer := int64(7)
	classes := &fakeClassOwnership{classes: map[int64]*models.ClassOwnership{
		5: {ID: 5, LecturerID: &lecturer},
	}}
	reports := &fakeReports{}
	svc := NewReportService(reports, classes, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), 7, validReportRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Equal(t, "Class not found", appErr.Message)
	assert.Empty(t, reports.created)
}

func TestReportServiceCreateDuplicate(t *testing.T) {
	reports := &fakeReports{createErr: errUnique}
	svc := newReportServiceForTest(reports, 7, 30)

	_, err := svc.Create(context.Background(), 7, validReportRequest())
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestReportServiceListFacultyWithoutFaculty(t *testing.T) {
	reports := &fakeReports{records: []models.ReportRecord{{ID: 1}}}
	svc := newReportServiceForTest(reports, 7, 0)

	views, err := svc.List(context.Background(), models.ReportFilter{Scope: models.FacultyScope(3, nil)})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Empty(t, reports.filters)

	faculty := int64(2)
	views, err = svc.List(context.Background(), models.ReportFilter{Scope: models.FacultyScope(3, &faculty)})
	require.NoError(t, err)
	assert.Len(t, views, 1)
}
