package models

// ScopeKind names how far a capability reaches for a role.
type ScopeKind string

const (
	ScopeOwn      ScopeKind = "own"
	ScopeFaculty  ScopeKind = "faculty"
	ScopeEnrolled ScopeKind = "enrolled"
	ScopeAll      ScopeKind = "all"
)

// Scope is a resolved visibility rule for one caller.
type Scope struct {
	Kind      ScopeKind
	UserID    int64
	FacultyID *int64
}

// AllScope is the unrestricted scope.
func AllScope() Scope {
	return Scope{Kind: ScopeAll}
}

// OwnScope limits rows to those owned by userID.
func OwnScope(userID int64) Scope {
	return Scope{Kind: ScopeOwn, UserID: userID}
}

// FacultyScope limits rows to facultyID.
func FacultyScope(userID int64, facultyID *int64) Scope {
	return Scope{Kind: ScopeFaculty, UserID: userID, FacultyID: facultyID}
}

// EnrolledScope limits rows to the student's active enrolments.
func EnrolledScope(studentID int64) Scope {
	return Scope{Kind: ScopeEnrolled, UserID: studentID}
}

// MatchesNothing reports a faculty scope without a faculty.
func (s Scope) MatchesNothing() bool {
	return s.Kind == ScopeFaculty && s.FacultyID == nil
}
