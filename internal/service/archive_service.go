package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type archiveSweeper interface {
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type exportPathClearer interface {
	ClearFilePaths(ctx context.Context, paths []string) error
}

// ArchiveReaperConfig controls retention and schedule of the export archive sweep.
type ArchiveReaperConfig struct {
	Retention time.Duration
	Schedule  string
	Timeout   time.Duration
}

// ArchiveReaper periodically deletes archived exports past retention and
// detaches them from the export log.
type ArchiveReaper struct {
	archive archiveSweeper
	logs    exportPathClearer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ArchiveReaperConfig

	mu   sync.Mutex
	cron *cron.Cron
}

// NewArchiveReaper constructs an ArchiveReaper.
func NewArchiveReaper(archive archiveSweeper, logs exportPathClearer, metrics *MetricsService, logger *zap.Logger, cfg ArchiveReaperConfig) *ArchiveReaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1h"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &ArchiveReaper{archive: archive, logs: logs, metrics: metrics, logger: logger, cfg: cfg}
}

// Start schedules the sweep. Overlapping runs are skipped.
func (r *ArchiveReaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(r.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
		defer cancel()
		if _, err := r.Sweep(ctx); err != nil {
			r.logger.Warn("export archive sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule archive reaper %q: %w", r.cfg.Schedule, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("export archive reaper started",
		zap.String("schedule", r.cfg.Schedule), zap.Duration("retention", r.cfg.Retention))
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (r *ArchiveReaper) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Sweep deletes expired files once and returns how many were removed.
func (r *ArchiveReaper) Sweep(ctx context.Context) (int, error) {
	deleted, err := r.archive.CleanupOlderThan(r.cfg.Retention)
	if err != nil {
		return 0, err
	}
	if len(deleted) == 0 {
		return 0, nil
	}
	if err := r.logs.ClearFilePaths(ctx, deleted); err != nil {
		r.logger.Warn("failed to detach swept exports", zap.Int("files", len(deleted)), zap.Error(err))
	}
	r.metrics.ArchiveSwept(len(deleted))
	r.logger.Info("swept export archive", zap.Int("files", len(deleted)))
	return len(deleted), nil
}
