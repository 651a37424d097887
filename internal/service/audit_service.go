package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/jobs"
)

const auditJobType = "audit.record"

type auditWriter interface {
	Create(ctx context.Context, entry models.AuditEntry) error
}

type auditEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// AuditRecorder is the side channel admin services write their actions to.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

// AuditSink persists admin audit entries off the request path. Record never
// fails the caller: a full or stopped queue falls back to a synchronous write
// and lost entries are counted.
type AuditSink struct {
	repo    auditWriter
	queue   auditEnqueuer
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
}

// AuditSinkConfig sizes the background queue.
type AuditSinkConfig struct {
	Workers    int
	BufferSize int
}

// NewAuditSink builds a sink together with the queue that drains it. The
// caller starts and stops the returned queue.
func NewAuditSink(repo auditWriter, metrics *MetricsService, logger *zap.Logger, cfg AuditSinkConfig) (*AuditSink, *jobs.Queue) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sink := &AuditSink{repo: repo, metrics: metrics, logger: logger, timeout: 5 * time.Second}
	queue := jobs.NewQueue("audit", sink.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: 1,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
		OnDrop: func(job jobs.Job, err error) {
			metrics.AuditFailed()
		},
	})
	sink.queue = queue
	return sink, queue
}

// Record hands entry to the queue, writing inline when it cannot be queued.
func (s *AuditSink) Record(ctx context.Context, entry models.AuditEntry) {
	if s == nil {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: auditJobType, Payload: entry}
	if s.queue != nil {
		err := s.queue.TryEnqueue(job)
		if err == nil {
			return
		}
		s.logger.Debug("audit queue unavailable, writing inline", zap.Error(err))
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	if err := s.repo.Create(writeCtx, entry); err != nil {
		s.fail(entry, err)
	}
}

func (s *AuditSink) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditEntry)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	writeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.Create(writeCtx, entry)
}

func (s *AuditSink) fail(entry models.AuditEntry, err error) {
	s.metrics.AuditFailed()
	s.logger.Warn("audit entry dropped",
		zap.String("action", entry.Action),
		zap.String("entity_type", entry.EntityType),
		zap.Int64("admin_id", entry.AdminID),
		zap.Error(err),
	)
}
