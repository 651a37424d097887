package dto

// AssignLecturerRequest assigns a lecturer to a class.
type AssignLecturerRequest struct {
	LecturerID int64 `json:"lecturerId"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UpdateFacultyRequest moves a user to a faculty; nil clears it.
type UpdateFacultyRequest struct {
	FacultyID *int64 `json:"facultyId"`
}

// ExportLogged acknowledges a client-side export log entry.
type ExportLogged struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}
