package models

// RoleCount is a role with its user count.
type RoleCount struct {
	Role  string `db:"role" json:"role"`
	Count int    `db:"count" json:"count"`
}

// StatusCount is a report status with its count.
type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}

// AdminTotals are the single-row counters behind the statistics endpoint.
type AdminTotals struct {
	TotalFaculties          int `db:"total_faculties"`
	TotalPrograms           int `db:"total_programs"`
	TotalCourses            int `db:"total_courses"`
	TotalReports            int `db:"total_reports"`
	PendingApprovals        int `db:"pending_approvals"`
	ActiveRegistrationCodes int `db:"active_registration_codes"`
}

// AdminStatistics is the admin overview payload.
type AdminStatistics struct {
	UsersByRole             map[string]int `json:"usersByRole"`
	TotalUsers              int            `json:"totalUsers"`
	TotalFaculties          int            `json:"totalFaculties"`
	TotalPrograms           int            `json:"totalPrograms"`
	TotalCourses            int            `json:"totalCourses"`
	TotalReports            int            `json:"totalReports"`
	PendingApprovals        int            `json:"pendingApprovals"`
	ReportsByStatus         map[string]int `json:"reportsByStatus"`
	ActiveRegistrationCodes int            `json:"activeRegistrationCodes"`
}

// FacultyProgramCount is the program count of one faculty.
type FacultyProgramCount struct {
	Faculty string `db:"faculty" json:"faculty"`
	Count   int    `db:"count" json:"count"`
}

// CourseStats summarizes the course catalog.
type CourseStats struct {
	TotalCourses        int `db:"total_courses" json:"totalCourses"`
	ProgramsWithCourses int `db:"programs_with_courses" json:"programsWithCourses"`
}

// ReportTrend is one day of report submissions.
type ReportTrend struct {
	Date      string `db:"date" json:"date"`
	Count     int    `db:"count" json:"count"`
	Submitted int    `db:"submitted" json:"submitted"`
	Draft     int    `db:"draft" json:"draft"`
}

// ApprovalStats counts staff approval states.
type ApprovalStats struct {
	Approved int `db:"approved" json:"approved"`
	Pending  int `db:"pending" json:"pending"`
	Total    int `db:"total" json:"total"`
}

// HealthMetrics combines catalog counters with process metrics.
type HealthMetrics struct {
	TotalUsers      int            `db:"total_users" json:"totalUsers"`
	TotalReports    int            `db:"total_reports" json:"totalReports"`
	ActiveFaculties int            `db:"active_faculties" json:"activeFaculties"`
	TotalCourses    int            `db:"total_courses" json:"totalCourses"`
	System          *SystemMetrics `db:"-" json:"system,omitempty"`
}

// SystemMetrics is a snapshot of process-level metrics.
type SystemMetrics struct {
	Goroutines         int     `json:"goroutines"`
	HeapAllocMB        float64 `json:"heapAllocMb"`
	RequestCount       float64 `json:"requestCount"`
	AvgRequestSeconds  float64 `json:"avgRequestSeconds"`
	CacheHitRatio      float64 `json:"cacheHitRatio"`
	AuditFailures      float64 `json:"auditFailures"`
	UptimeSeconds      float64 `json:"uptimeSeconds"`
	ExportsRendered    float64 `json:"exportsRendered"`
	ReportsSubmitted   float64 `json:"reportsSubmitted"`
	ArchivedFilesSwept float64 `json:"archivedFilesSwept"`
}

// AdminAnalytics is the admin analytics payload.
type AdminAnalytics struct {
	UsersByRole       []RoleCount           `json:"usersByRole"`
	ProgramsByFaculty []FacultyProgramCount `json:"programsByFaculty"`
	CourseStats       CourseStats           `json:"courseStats"`
	ReportTrends      []ReportTrend         `json:"reportTrends"`
	ApprovalStats     ApprovalStats         `json:"approvalStats"`
	HealthMetrics     HealthMetrics         `json:"healthMetrics"`
}

// SearchHit is one entry of an admin search result group.
type SearchHit struct {
	ID       int64   `db:"id" json:"id"`
	Code     *string `db:"code" json:"code,omitempty"`
	Name     *string `db:"name" json:"name,omitempty"`
	Faculty  *string `db:"faculty" json:"faculty,omitempty"`
	UserID   *string `db:"user_id" json:"userId,omitempty"`
	FullName *string `db:"full_name" json:"fullName,omitempty"`
	Email    *string `db:"email" json:"email,omitempty"`
	Role     *string `db:"role" json:"role,omitempty"`
}

// Search groups.
const (
	SearchFaculties = "faculties"
	SearchPrograms  = "programs"
	SearchCourses   = "courses"
	SearchUsers     = "users"
)

// SearchResults maps each searched group to its hits. A query too short to
// search yields a single empty "results" group.
type SearchResults map[string][]SearchHit

// SearchGroups lists the searchable groups in response order.
var SearchGroups = []string{SearchFaculties, SearchPrograms, SearchCourses, SearchUsers}
