package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	_ "github.com/noah-isme/luct-reporting-api/api/swagger"
	"github.com/noah-isme/luct-reporting-api/internal/handler"
	"github.com/noah-isme/luct-reporting-api/internal/repository"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/cache"
	"github.com/noah-isme/luct-reporting-api/pkg/config"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	"github.com/noah-isme/luct-reporting-api/pkg/logger"
	"github.com/noah-isme/luct-reporting-api/pkg/storage"
)

// @title LUCT Reporting API
// @version 1.0.0
// @description Role-based academic reporting: lecture reports, monitoring, ratings and catalogue administration.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, database.MigrateUp, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	users := repository.NewUserRepository(db)
	faculties := repository.NewFacultyRepository(db)
	codes := repository.NewRegistrationCodeRepository(db)
	programs := repository.NewProgramRepository(db)
	courses := repository.NewCourseRepository(db)
	classes := repository.NewClassRepository(db)
	enrollments := repository.NewEnrollmentRepository(db)
	reports := repository.NewReportRepository(db)
	monitoring := repository.NewMonitoringRepository(db)
	ratings := repository.NewRatingRepository(db)
	announcements := repository.NewAnnouncementRepository(db)
	auditLogs := repository.NewAuditRepository(db)
	exportLogs := repository.NewExportLogRepository(db)
	insights := repository.NewInsightsRepository(db)

	if cfg.Seed.DemoData {
		seeder := service.NewSeedService(faculties, codes, users, service.SeedPasswords{
			Admin:   cfg.Seed.AdminPassword,
			Staff:   cfg.Seed.StaffPassword,
			Student: cfg.Seed.StudentPassword,
		}, logr)
		summary, err := seeder.Seed(ctx)
		if err != nil {
			logr.Fatal("failed to seed demo data", zap.Error(err))
		}
		logr.Info("demo data seeded", zap.Int("faculties", summary.Faculties), zap.Int("users_created", summary.UsersCreated), zap.Int("users_updated", summary.UsersUpdated))
	}

	metricsSvc := service.NewMetricsService()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	auditSink, auditQueue := service.NewAuditSink(auditLogs, metricsSvc, logr, service.AuditSinkConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
	})
	// Outlives the signal context so requests finishing during shutdown still queue.
	auditQueue.Start(context.Background())

	exportParams := service.ExportServiceParams{
		Reports:  reports,
		Users:    users,
		Programs: programs,
		Logs:     exportLogs,
		Metrics:  metricsSvc,
		Logger:   logr,
		Config:   service.ExportServiceConfig{APIPrefix: cfg.APIPrefix},
	}
	var reaper *service.ArchiveReaper
	if cfg.Exports.ArchiveEnabled {
		archive, err := storage.NewArchive(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to prepare export archive", zap.Error(err))
		}
		exportParams.Archive = archive
		exportParams.Signer = storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

		reaper = service.NewArchiveReaper(archive, exportLogs, metricsSvc, logr, service.ArchiveReaperConfig{
			Retention: cfg.Exports.Retention,
			Schedule:  cfg.Exports.CleanupSchedule,
		})
		if err := reaper.Start(); err != nil {
			logr.Fatal("failed to schedule export cleanup", zap.Error(err))
		}
	}

	validate := validator.New()
	authSvc := service.NewAuthService(users, codes, faculties, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
		RequireApproval:   cfg.Auth.RequireApproval,
	})
	catalogSvc := service.NewCatalogService(service.CatalogServiceParams{
		Faculties: faculties,
		Programs:  programs,
		Courses:   courses,
		Audit:     auditSink,
		Cache:     cacheSvc,
		Logger:    logr,
	})
	classSvc := service.NewClassService(classes, users, auditSink, cacheSvc, logr)
	reportSvc := service.NewReportService(reports, classes, cacheSvc, metricsSvc, logr)
	reviewSvc := service.NewReviewService(monitoring, ratings, reports, cacheSvc, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollments, classes, cacheSvc, logr)
	userSvc := service.NewUserService(users, auditSink, cacheSvc, logr)
	codeSvc := service.NewRegistrationCodeService(codes, auditSink, logr)
	announcementSvc := service.NewAnnouncementService(announcements, validate, auditSink, cacheSvc, logr)
	analyticsSvc := service.NewAnalyticsService(insights, auditLogs, cacheSvc, metricsSvc, logr, cfg.Analytics.CacheTTL)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Reports:       reports,
		Classes:       classes,
		Monitoring:    monitoring,
		Ratings:       ratings,
		Programs:      programs,
		Announcements: announcements,
		Cache:         cacheSvc,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	exportSvc := service.NewExportService(exportParams)

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Tokens:         authSvc,
		Metrics:        metricsSvc,
		Audit:          auditSink,
		Logger:         logr,
	}, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Teaching:      handler.NewTeachingHandler(classSvc, reportSvc, catalogSvc),
		Reviews:       handler.NewReviewHandler(reviewSvc),
		Student:       handler.NewStudentHandler(classSvc, enrollmentSvc),
		Catalog:       handler.NewCatalogHandler(catalogSvc),
		Users:         handler.NewUserHandler(userSvc),
		Codes:         handler.NewRegistrationCodeHandler(codeSvc),
		Classes:       handler.NewClassHandler(classSvc),
		Insights:      handler.NewInsightsHandler(analyticsSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Exports:       handler.NewExportHandler(exportSvc),
		Health:        handler.NewHealthHandler(db, metricsSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if reaper != nil {
		reaper.Stop()
	}
	auditQueue.Stop()
}
