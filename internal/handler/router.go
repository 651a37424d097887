package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/middleware"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/policy"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/luct-reporting-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/luct-reporting-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP surface mounted by NewRouter.
type Handlers struct {
	Auth          *AuthHandler
	Dashboard     *DashboardHandler
	Teaching      *TeachingHandler
	Reviews       *ReviewHandler
	Student       *StudentHandler
	Catalog       *CatalogHandler
	Users         *UserHandler
	Codes         *RegistrationCodeHandler
	Classes       *ClassHandler
	Insights      *InsightsHandler
	Announcements *AnnouncementHandler
	Exports       *ExportHandler
	Health        *HealthHandler
}

// RouterConfig carries the cross-cutting pieces the router wires in.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Tokens         middleware.TokenValidator
	Metrics        *service.MetricsService
	Audit          service.AuditRecorder
	Logger         *zap.Logger
}

// NewRouter builds the gin engine with every route and its capability.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/metrics", h.Health.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/health", h.Health.Health)

	jwt := middleware.JWT(cfg.Tokens)
	can := middleware.Authorize

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/register", h.Auth.Register)
	auth.GET("/faculties", h.Auth.Faculties)
	auth.GET("/me", jwt, h.Auth.Me)

	api.GET("/dashboard", jwt, can(policy.DashboardRead), h.Dashboard.Dashboard)

	lecturer := api.Group("/lecturer", jwt)
	lecturer.GET("/classes", can(policy.TeachingRead), h.Teaching.Classes(models.ClassOrderSchedule))
	lecturer.GET("/reports", can(policy.TeachingRead), h.Teaching.Reports)
	lecturer.POST("/reports", can(policy.ReportSubmit), h.Teaching.CreateReport)

	prl := api.Group("/prl", jwt)
	prl.GET("/classes", can(policy.FacultyOversight), h.Teaching.Classes(models.ClassOrderTerm))
	prl.GET("/reports", can(policy.FacultyOversight), h.Teaching.Reports)
	prl.GET("/monitoring", can(policy.MonitoringRead), h.Reviews.Monitoring)
	prl.POST("/monitoring", can(policy.MonitoringWrite), h.Reviews.CreateMonitoring)
	prl.GET("/ratings", can(policy.RatingsRead), h.Reviews.Ratings)

	pl := api.Group("/pl", jwt, can(policy.ProgrammeOversight))
	pl.GET("/programs", h.Teaching.Programs)
	pl.GET("/classes", h.Teaching.Classes(models.ClassOrderSchedule))
	pl.GET("/reports", h.Teaching.Reports)

	student := api.Group("/student", jwt)
	student.GET("/classes", can(policy.LearningRead), h.Teaching.Classes(models.ClassOrderSchedule))
	student.GET("/reports", can(policy.LearningRead), h.Teaching.Reports)
	student.GET("/available-classes", can(policy.ClassesBrowse), h.Student.AvailableClasses)
	student.POST("/enroll", can(policy.EnrollmentManage), h.Student.Enroll)
	student.POST("/withdraw", can(policy.EnrollmentManage), h.Student.Withdraw)
	student.GET("/ratings", can(policy.RatingSubmit), h.Reviews.Ratings)
	student.POST("/ratings", can(policy.RatingSubmit), h.Reviews.Rate)

	exportAudit := middleware.Audit(cfg.Audit, models.AuditActionExport, models.EntityExport)
	exports := api.Group("/export", jwt, exportAudit)
	exports.POST("/reports", can(policy.ExportReports), h.Exports.Reports)
	exports.POST("/users", can(policy.ExportUsers), h.Exports.Users)
	exports.POST("/programs", can(policy.ExportPrograms), h.Exports.Programs)
	api.GET("/exports/download/:token", h.Exports.Download)

	adminBase := api.Group("/admin", jwt)
	adminBase.GET("/academic-years", can(policy.CatalogYears), h.Insights.AcademicYears)
	adminBase.POST("/exports/log", can(policy.ExportLog), h.Exports.Log)
	adminBase.GET("/exports/history", can(policy.ExportHistory), h.Exports.History)

	admin := adminBase.Group("", can(policy.AdminManage))
	admin.GET("/faculties", h.Catalog.ListFaculties)
	admin.POST("/faculties", h.Catalog.CreateFaculty)
	admin.PUT("/faculties/:id", h.Catalog.UpdateFaculty)
	admin.DELETE("/faculties/:id", h.Catalog.DeleteFaculty)

	admin.GET("/programs", h.Catalog.ListPrograms)
	admin.POST("/programs", h.Catalog.CreateProgram)
	admin.PUT("/programs/:id", h.Catalog.UpdateProgram)
	admin.DELETE("/programs/:id", h.Catalog.DeleteProgram)
	admin.GET("/programs/:id/offerings", h.Catalog.ListOfferings)
	admin.POST("/programs/:id/offerings", h.Catalog.CreateOffering)
	admin.DELETE("/programs/:id/offerings/:offeringId", h.Catalog.DeleteOffering)

	admin.GET("/courses", h.Catalog.ListCourses)
	admin.POST("/courses", h.Catalog.CreateCourse)
	admin.PUT("/courses/:id", h.Catalog.UpdateCourse)
	admin.DELETE("/courses/:id", h.Catalog.DeleteCourse)

	admin.GET("/users", h.Users.List)
	admin.GET("/users/pending-approvals", h.Users.PendingApprovals)
	admin.POST("/users/:id/approve", h.Users.Approve)
	admin.POST("/users/:id/reject", h.Users.Reject)
	admin.PUT("/users/:id/role", h.Users.UpdateRole)
	admin.PUT("/users/:id/faculty", h.Users.UpdateFaculty)

	admin.GET("/registration-codes", h.Codes.List)
	admin.POST("/registration-codes", h.Codes.Create)
	admin.POST("/registration-codes/:id/deactivate", h.Codes.Deactivate)
	admin.DELETE("/registration-codes/:id", h.Codes.Delete)

	admin.GET("/classes", h.Classes.List)
	admin.POST("/classes", h.Classes.Create)
	admin.PUT("/classes/:id", h.Classes.Update)
	admin.DELETE("/classes/:id", h.Classes.Delete)
	admin.PUT("/classes/:id/assign-lecturer", h.Classes.AssignLecturer)
	admin.DELETE("/classes/:id/assign-lecturer", h.Classes.UnassignLecturer)
	admin.GET("/lecturers", h.Users.Lecturers)
	admin.GET("/lecturer-assignments/:lecturerId", h.Classes.LecturerAssignments)

	admin.GET("/statistics", h.Insights.Statistics)
	admin.GET("/analytics", h.Insights.Analytics)
	admin.GET("/audit-logs", h.Insights.AuditLogs)
	admin.GET("/search", h.Insights.Search)

	admin.GET("/announcements", h.Announcements.List)
	admin.POST("/announcements", h.Announcements.Create)
	admin.DELETE("/announcements/:id", h.Announcements.Delete)

	return r
}
