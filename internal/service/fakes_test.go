package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

var (
	errUnique     = &pq.Error{Code: "23505"}
	errForeignKey = &pq.Error{Code: "23503"}
)

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

type recordingAudit struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, entry models.AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action+":"+e.EntityType)
	}
	return out
}

type fakeUsers struct {
	byID       map[int64]*models.User
	nextID     int64
	createErr  error
	listFilter models.UserFilter
	updated    []*models.User
	deleted    []int64
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]*models.User{}, nextID: 100}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) FindByUserIDOrEmail(_ context.Context, userID, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.UserID == userID || u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	user.ID = f.nextID
	c := *user
	f.byID[user.ID] = &c
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, user *models.User) error {
	c := *user
	f.byID[user.ID] = &c
	f.updated = append(f.updated, &c)
	return nil
}

func (f *fakeUsers) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	f.listFilter = filter
	out := []models.User{}
	for _, u := range f.byID {
		if filter.Approved != nil && u.Approved != *filter.Approved {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) SetApproved(_ context.Context, id int64) error {
	u, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Approved = true
	return nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id int64, role models.UserRole) error {
	u, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.Role = role
	return nil
}

func (f *fakeUsers) UpdateFaculty(_ context.Context, id int64, facultyID *int64) error {
	u, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	u.FacultyID = facultyID
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) ListLecturers(context.Context) ([]models.LecturerSummary, error) {
	return nil, nil
}

type fakeCodes struct {
	codes map[string]*models.RegistrationCode
}

func (f *fakeCodes) FindByCode(_ context.Context, code string, role models.UserRole) (*models.RegistrationCode, error) {
	if c, ok := f.codes[code]; ok && c.Role == role {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type fakeClassOwnership struct {
	classes map[int64]*models.ClassOwnership
}

func (f *fakeClassOwnership) Ownership(_ context.Context, id int64) (*models.ClassOwnership, error) {
	if c, ok := f.classes[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

type fakeReports struct {
	records   []models.ReportRecord
	created   []models.NewReport
	createErr error
	filters   []models.ReportFilter
	totals    models.ReportTotals
	// notEnrolled hides reports from EnrolledScope lookups.
	notEnrolled map[int64]bool
}

func (f *fakeReports) List(_ context.Context, filter models.ReportFilter) ([]models.ReportRecord, error) {
	f.filters = append(f.filters, filter)
	out := []models.ReportRecord{}
	for _, r := range f.records {
		if filter.ID != nil && r.ID != *filter.ID {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeReports) Find(ctx context.Context, id int64, scope models.Scope) (*models.ReportRecord, error) {
	for _, r := range f.records {
		if r.ID != id {
			continue
		}
		if scope.Kind == models.ScopeEnrolled && f.notEnrolled[id] {
			return nil, sql.ErrNoRows
		}
		c := r
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeReports) Create(_ context.Context, report models.NewReport) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, report)
	id := int64(len(f.records) + 1)
	f.records = append(f.records, models.ReportRecord{
		ID:                    id,
		ClassID:               &report.ClassID,
		LecturerID:            &report.LecturerID,
		DateOfLecture:         report.DateOfLecture.Format(models.DateLayout),
		WeekOfReporting:       report.WeekOfReporting,
		ActualStudentsPresent: report.ActualStudentsPresent,
		Status:                report.Status,
		TopicTaught:           report.TopicTaught,
		LearningOutcomes:      report.LearningOutcomes,
		Venue:                 report.Venue,
		ScheduledLectureTime:  report.ScheduledLectureTime,
	})
	return id, nil
}

func (f *fakeReports) Totals(context.Context, models.ReportFilter, time.Time, time.Time) (models.ReportTotals, error) {
	return f.totals, nil
}

type fakeClasses struct {
	records  []models.ClassRecord
	filters  []models.ClassFilter
	assigned map[int64]*int64
}

func (f *fakeClasses) List(_ context.Context, filter models.ClassFilter) ([]models.ClassRecord, error) {
	f.filters = append(f.filters, filter)
	return f.records, nil
}

func (f *fakeClasses) Get(_ context.Context, id int64) (*models.ClassRecord, error) {
	for _, r := range f.records {
		if r.ID == id {
			c := r
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClasses) Create(_ context.Context, input models.ClassInput) (int64, error) {
	id := int64(len(f.records) + 1)
	f.records = append(f.records, models.ClassRecord{ID: id, ClassCode: input.ClassCode})
	return id, nil
}

func (f *fakeClasses) Update(_ context.Context, id int64, input models.ClassInput) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].ClassCode = input.ClassCode
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeClasses) AssignLecturer(_ context.Context, id int64, lecturerID *int64) error {
	if f.assigned == nil {
		f.assigned = map[int64]*int64{}
	}
	f.assigned[id] = lecturerID
	return nil
}

func (f *fakeClasses) Delete(_ context.Context, id int64) error {
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}
