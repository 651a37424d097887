package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent           UserRole = "student"
	RoleLecturer          UserRole = "lecturer"
	RolePrincipalLecturer UserRole = "principal_lecturer"
	RoleProgramLeader     UserRole = "program_leader"
	RoleAdmin             UserRole = "admin"
)

// Roles lists every role in display order.
var Roles = []UserRole{RoleStudent, RoleLecturer, RolePrincipalLecturer, RoleProgramLeader, RoleAdmin}

// StaffRoles are the roles that teach and need approval.
var StaffRoles = []UserRole{RoleLecturer, RolePrincipalLecturer, RoleProgramLeader}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsStaff reports whether r is a teaching role.
func (r UserRole) IsStaff() bool {
	for _, role := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// UserIDPrefix is the prefix of generated institutional user ids.
func (r UserRole) UserIDPrefix() string {
	switch r {
	case RoleStudent:
		return "STU"
	case RoleLecturer:
		return "LEC"
	case RolePrincipalLecturer:
		return "PRL"
	case RoleProgramLeader:
		return "PLD"
	case RoleAdmin:
		return "ADM"
	default:
		return "USR"
	}
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	FirstName    string    `db:"first_name" json:"firstName"`
	LastName     string    `db:"last_name" json:"lastName"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	FacultyID    *int64    `db:"faculty_id" json:"facultyId"`
	FacultyName  *string   `db:"faculty_name" json:"facultyName"`
	FacultyCode  *string   `db:"faculty_code" json:"facultyCode,omitempty"`
	Approved     bool      `db:"is_approved" json:"approved"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Info returns the public profile used in auth responses.
func (u User) Info() UserInfo {
	return UserInfo{
		ID:          u.ID,
		UserID:      u.UserID,
		Name:        u.FullName(),
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Role:        u.Role,
		FacultyID:   u.FacultyID,
		FacultyName: u.FacultyName,
		Approved:    u.Approved,
	}
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID          int64    `json:"id"`
	UserID      string   `json:"userId"`
	Name        string   `json:"name"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Role        UserRole `json:"role"`
	FacultyID   *int64   `json:"facultyId"`
	FacultyName *string  `json:"facultyName"`
	Approved    bool     `json:"approved"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Roles     []UserRole
	FacultyID *int64
	Approved  *bool
}

// LecturerSummary is a staff member offered for class assignment.
type LecturerSummary struct {
	ID          int64    `db:"id" json:"id"`
	UserID      string   `db:"user_id" json:"userId"`
	FirstName   string   `db:"first_name" json:"firstName"`
	LastName    string   `db:"last_name" json:"lastName"`
	Email       string   `db:"email" json:"email"`
	Role        UserRole `db:"role" json:"role"`
	FacultyID   *int64   `db:"faculty_id" json:"facultyId"`
	FacultyName *string  `db:"faculty_name" json:"facultyName"`
	ClassCount  int      `db:"class_count" json:"classCount"`
}
