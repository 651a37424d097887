package dto

// Export scopes requested by clients.
const (
	ExportScopeAll = "all"
	ExportScopeOwn = "own"
)

// ReportExportFilters narrows exported reports.
type ReportExportFilters struct {
	FacultyID  *int64 `json:"facultyId,omitempty"`
	LecturerID *int64 `json:"lecturerId,omitempty"`
	StartDate  string `json:"startDate,omitempty"`
	EndDate    string `json:"endDate,omitempty"`
	Status     string `json:"status,omitempty"`
}

// ExportReportsRequest is the body of POST /export/reports.
type ExportReportsRequest struct {
	Format  string              `json:"format"`
	Filters ReportExportFilters `json:"filters"`
	Scope   string              `json:"scope"`
}

// UserExportFilters narrows exported users.
type UserExportFilters struct {
	Role      string `json:"role,omitempty"`
	FacultyID *int64 `json:"facultyId,omitempty"`
	Approved  *bool  `json:"approved,omitempty"`
}

// ExportUsersRequest is the body of POST /export/users.
type ExportUsersRequest struct {
	Format  string            `json:"format"`
	Filters UserExportFilters `json:"filters"`
}

// ProgramExportFilters narrows exported programs.
type ProgramExportFilters struct {
	FacultyID    *int64 `json:"facultyId,omitempty"`
	AcademicYear string `json:"academicYear,omitempty"`
}

// ExportProgramsRequest is the body of POST /export/programs.
type ExportProgramsRequest struct {
	Format  string               `json:"format"`
	Filters ProgramExportFilters `json:"filters"`
}
