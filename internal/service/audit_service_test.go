package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

type memoryAuditWriter struct {
	mu      sync.Mutex
	entries []models.AuditEntry
	err     error
}

func (m *memoryAuditWriter) Create(_ context.Context, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAuditWriter) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func TestAuditSinkWritesThroughQueue(t *testing.T) {
	writer := &memoryAuditWriter{}
	sink, queue := NewAuditSink(writer, nil, zap.NewNop(), AuditSinkConfig{Workers: 2, BufferSize: 8})
	queue.Start(context.Background())

	for i := 0; i < 5; i++ {
		sink.Record(context.Background(), Actor{ID: 1}.entry(models.AuditActionCreate, models.EntityFaculty, int64Ptr(int64(i)), nil, nil))
	}
	queue.Stop()

	assert.Equal(t, 5, writer.count())
}

func TestAuditSinkFallsBackInline(t *testing.T) {
	writer := &memoryAuditWriter{}
	sink, _ := NewAuditSink(writer, nil, zap.NewNop(), AuditSinkConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink.Record(ctx, Actor{ID: 1}.entry(models.AuditActionDelete, models.EntityUser, int64Ptr(3), nil, nil))

	require.Equal(t, 1, writer.count())
	assert.Equal(t, models.AuditActionDelete, writer.entries[0].Action)
}

func TestAuditSinkCountsFailures(t *testing.T) {
	writer := &memoryAuditWriter{err: errors.New("db down")}
	metrics := NewMetricsService()
	sink, _ := NewAuditSink(writer, metrics, zap.NewNop(), AuditSinkConfig{})

	sink.Record(context.Background(), Actor{ID: 1}.entry(models.AuditActionUpdate, models.EntityClass, int64Ptr(2), nil, nil))

	assert.Equal(t, float64(1), metrics.Snapshot().AuditFailures)
}
