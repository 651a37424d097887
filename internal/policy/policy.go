// Package policy holds the capability table that decides which roles may use
// an operation and how far their visibility reaches.
package policy

import "github.com/noah-isme/luct-reporting-api/internal/models"

// Capability names a guarded operation.
type Capability string

const (
	TeachingRead       Capability = "teaching.read"
	ReportSubmit       Capability = "report.submit"
	FacultyOversight   Capability = "faculty.oversight"
	MonitoringRead     Capability = "monitoring.read"
	MonitoringWrite    Capability = "monitoring.write"
	RatingsRead        Capability = "ratings.read"
	ProgrammeOversight Capability = "programme.oversight"
	LearningRead       Capability = "learning.read"
	EnrollmentManage   Capability = "enrollment.manage"
	RatingSubmit       Capability = "rating.submit"
	ClassesBrowse      Capability = "classes.browse"
	DashboardRead      Capability = "dashboard.read"
	AdminManage        Capability = "admin.manage"
	ExportReports      Capability = "export.reports"
	ExportUsers        Capability = "export.users"
	ExportPrograms     Capability = "export.programs"
	ExportLog          Capability = "export.log"
	ExportHistory      Capability = "export.history"
	CatalogYears       Capability = "catalog.years"
)

type grants map[models.UserRole]models.ScopeKind

var (
	teaching = grants{
		models.RoleLecturer:          models.ScopeOwn,
		models.RolePrincipalLecturer: models.ScopeOwn,
		models.RoleProgramLeader:     models.ScopeOwn,
	}
	principalFaculty = grants{models.RolePrincipalLecturer: models.ScopeFaculty}
	studentEnrolled  = grants{models.RoleStudent: models.ScopeEnrolled}
	everyone         = func(kind models.ScopeKind) grants {
		g := grants{}
		for _, role := range models.Roles {
			g[role] = kind
		}
		return g
	}
)

var table = map[Capability]grants{
	TeachingRead:       teaching,
	ReportSubmit:       teaching,
	FacultyOversight:   principalFaculty,
	MonitoringRead:     principalFaculty,
	MonitoringWrite:    principalFaculty,
	RatingsRead:        principalFaculty,
	ProgrammeOversight: {models.RoleProgramLeader: models.ScopeFaculty},
	LearningRead:       studentEnrolled,
	EnrollmentManage:   studentEnrolled,
	RatingSubmit:       studentEnrolled,
	ClassesBrowse:      {models.RoleStudent: models.ScopeAll},
	DashboardRead: {
		models.RoleLecturer:          models.ScopeOwn,
		models.RolePrincipalLecturer: models.ScopeFaculty,
		models.RoleProgramLeader:     models.ScopeFaculty,
		models.RoleStudent:           models.ScopeEnrolled,
		models.RoleAdmin:             models.ScopeAll,
	},
	AdminManage: {models.RoleAdmin: models.ScopeAll},
	ExportReports: {
		models.RoleAdmin:             models.ScopeAll,
		models.RolePrincipalLecturer: models.ScopeFaculty,
		models.RoleProgramLeader:     models.ScopeFaculty,
		models.RoleLecturer:          models.ScopeOwn,
	},
	ExportUsers: {models.RoleAdmin: models.ScopeAll},
	ExportPrograms: {
		models.RoleAdmin:         models.ScopeAll,
		models.RoleProgramLeader: models.ScopeFaculty,
	},
	ExportLog: everyone(models.ScopeOwn),
	ExportHistory: {
		models.RoleAdmin:             models.ScopeAll,
		models.RolePrincipalLecturer: models.ScopeFaculty,
	},
	CatalogYears: everyone(models.ScopeAll),
}

// Resolve returns the caller's scope for capability, or false when the role
// holds no grant.
func Resolve(capability Capability, claims *models.JWTClaims) (models.Scope, bool) {
	if claims == nil {
		return models.Scope{}, false
	}
	kind, ok := table[capability][claims.Role]
	if !ok {
		return models.Scope{}, false
	}
	return models.Scope{Kind: kind, UserID: claims.ID, FacultyID: claims.FacultyID}, true
}

// Allows reports whether role holds any grant for capability.
func Allows(capability Capability, role models.UserRole) bool {
	_, ok := table[capability][role]
	return ok
}

// Capabilities lists every capability in the table.
func Capabilities() []Capability {
	caps := make([]Capability, 0, len(table))
	for c := range table {
		caps = append(caps, c)
	}
	return caps
}
