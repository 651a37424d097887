package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// searchLimit caps each search group.
const searchLimit = 10

// InsightsRepository answers admin statistics, analytics and search queries.
type InsightsRepository struct {
	db *sqlx.DB
}

// NewInsightsRepository constructs the repository.
func NewInsightsRepository(db *sqlx.DB) *InsightsRepository {
	return &InsightsRepository{db: db}
}

// UsersByRole counts users per role.
func (r *InsightsRepository) UsersByRole(ctx context.Context) ([]models.RoleCount, error) {
	var rows []models.RoleCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT role, COUNT(*) AS count FROM users GROUP BY role ORDER BY role`); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	return rows, nil
}

// ReportsByStatus counts reports per status.
func (r *InsightsRepository) ReportsByStatus(ctx context.Context) ([]models.StatusCount, error) {
	var rows []models.StatusCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM reports GROUP BY status ORDER BY status`); err != nil {
		return nil, fmt.Errorf("count reports by status: %w", err)
	}
	return rows, nil
}

// Totals returns the single-row catalog counters.
func (r *InsightsRepository) Totals(ctx context.Context) (models.AdminTotals, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM faculties) AS total_faculties,
(SELECT COUNT(*) FROM programs) AS total_programs,
(SELECT COUNT(*) FROM courses) AS total_courses,
(SELECT COUNT(*) FROM reports) AS total_reports,
(SELECT COUNT(*) FROM users WHERE is_approved = FALSE AND role <> 'student') AS pending_approvals,
(SELECT COUNT(*) FROM registration_codes WHERE is_active = TRUE) AS active_registration_codes`
	var totals models.AdminTotals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return totals, fmt.Errorf("admin totals: %w", err)
	}
	return totals, nil
}

// ProgramsByFaculty counts programs per faculty, including empty faculties.
func (r *InsightsRepository) ProgramsByFaculty(ctx context.Context) ([]models.FacultyProgramCount, error) {
	const query = `SELECT f.faculty_name AS faculty, COUNT(p.id) AS count
FROM faculties f LEFT JOIN programs p ON p.faculty_id = f.id
GROUP BY f.id, f.faculty_name ORDER BY f.faculty_name`
	var rows []models.FacultyProgramCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count programs by faculty: %w", err)
	}
	return rows, nil
}

// CourseStats summarizes the course catalog.
func (r *InsightsRepository) CourseStats(ctx context.Context) (models.CourseStats, error) {
	const query = `SELECT COUNT(DISTINCT id) AS total_courses, COUNT(DISTINCT program_id) AS programs_with_courses FROM courses`
	var stats models.CourseStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return stats, fmt.Errorf("course stats: %w", err)
	}
	return stats, nil
}

// ReportTrends returns daily submission counts for the last days days.
func (r *InsightsRepository) ReportTrends(ctx context.Context, days int) ([]models.ReportTrend, error) {
	const query = `SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count,
COUNT(*) FILTER (WHERE status = 'submitted') AS submitted,
COUNT(*) FILTER (WHERE status = 'draft') AS draft
FROM reports
WHERE created_at >= NOW() - make_interval(days => $1)
GROUP BY DATE(created_at)
ORDER BY DATE(created_at) DESC`
	var rows []models.ReportTrend
	if err := r.db.SelectContext(ctx, &rows, query, days); err != nil {
		return nil, fmt.Errorf("report trends: %w", err)
	}
	return rows, nil
}

// ApprovalStats counts approved and pending staff.
func (r *InsightsRepository) ApprovalStats(ctx context.Context) (models.ApprovalStats, error) {
	const query = `SELECT COUNT(*) FILTER (WHERE is_approved) AS approved,
COUNT(*) FILTER (WHERE NOT is_approved) AS pending, COUNT(*) AS total
FROM users WHERE role <> 'student' AND role <> 'admin'`
	var stats models.ApprovalStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return stats, fmt.Errorf("approval stats: %w", err)
	}
	return stats, nil
}

// HealthMetrics returns the catalog counters of the analytics health block.
func (r *InsightsRepository) HealthMetrics(ctx context.Context) (models.HealthMetrics, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM users) AS total_users,
(SELECT COUNT(*) FROM reports) AS total_reports,
(SELECT COUNT(DISTINCT faculty_id) FROM programs) AS active_faculties,
(SELECT COUNT(*) FROM courses) AS total_courses`
	var metrics models.HealthMetrics
	if err := r.db.GetContext(ctx, &metrics, query); err != nil {
		return metrics, fmt.Errorf("health metrics: %w", err)
	}
	return metrics, nil
}

// Search matches term case-insensitively against one entity group.
func (r *InsightsRepository) Search(ctx context.Context, group, term string) ([]models.SearchHit, error) {
	var query string
	switch group {
	case models.SearchFaculties:
		query = `SELECT id, faculty_code AS code, faculty_name AS name FROM faculties
WHERE faculty_code ILIKE $1 OR faculty_name ILIKE $1 ORDER BY faculty_name`
	case models.SearchPrograms:
		query = `SELECT p.id, p.program_code AS code, p.program_name AS name, f.faculty_name AS faculty
FROM programs p LEFT JOIN faculties f ON f.id = p.faculty_id
WHERE p.program_code ILIKE $1 OR p.program_name ILIKE $1 ORDER BY p.program_name`
	case models.SearchCourses:
		query = `SELECT c.id, c.course_code AS code, c.course_name AS name, f.faculty_name AS faculty
FROM courses c LEFT JOIN faculties f ON f.id = c.faculty_id
WHERE c.course_code ILIKE $1 OR c.course_name ILIKE $1 ORDER BY c.course_name`
	case models.SearchUsers:
		query = `SELECT id, user_id, CONCAT(first_name, ' ', last_name) AS full_name, email, role FROM users
WHERE user_id ILIKE $1 OR email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1 ORDER BY first_name, last_name`
	default:
		return nil, fmt.Errorf("unknown search group %q", group)
	}
	var hits []models.SearchHit
	if err := r.db.SelectContext(ctx, &hits, query+limitClause(searchLimit), "%"+escapeLike(term)+"%"); err != nil {
		return nil, fmt.Errorf("search %s: %w", group, err)
	}
	return hits, nil
}

// AcademicYears lists the distinct academic years of programs and classes.
func (r *InsightsRepository) AcademicYears(ctx context.Context) ([]string, error) {
	const query = `SELECT academic_year FROM programs WHERE academic_year IS NOT NULL
UNION
SELECT academic_year FROM classes
ORDER BY academic_year DESC`
	years := make([]string, 0)
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list academic years: %w", err)
	}
	return years, nil
}

// Ping checks database connectivity.
func (r *InsightsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func escapeLike(term string) string {
	out := make([]rune, 0, len(term))
	for _, ch := range term {
		if ch == '%' || ch == '_' || ch == '\\' {
			out = append(out, '\\')
		}
		out = append(out, ch)
	}
	return string(out)
}
