package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/pkg/storage"
)

type recordingPathClearer struct {
	cleared []string
}

func (r *recordingPathClearer) ClearFilePaths(_ context.Context, paths []string) error {
	r.cleared = append(r.cleared, paths...)
	return nil
}

func TestArchiveReaperSweepRemovesExpired(t *testing.T) {
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)

	oldName, err := archive.Save("reports-old.csv", []byte("a"))
	require.NoError(t, err)
	_, err = archive.Save("reports-new.csv", []byte("b"))
	require.NoError(t, err)
	past := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(archive.Dir(), oldName), past, past))

	logs := &recordingPathClearer{}
	metrics := NewMetricsService()
	reaper := NewArchiveReaper(archive, logs, metrics, zap.NewNop(), ArchiveReaperConfig{Retention: 7 * 24 * time.Hour})

	n, err := reaper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{oldName}, logs.cleared)
	assert.Equal(t, float64(1), metrics.Snapshot().ArchivedFilesSwept)

	n, err = reaper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestArchiveReaperStartRejectsBadSchedule(t *testing.T) {
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	reaper := NewArchiveReaper(archive, &recordingPathClearer{}, nil, zap.NewNop(), ArchiveReaperConfig{Schedule: "every tuesday"})

	assert.Error(t, reaper.Start())
	reaper.Stop()

	reaper = NewArchiveReaper(archive, &recordingPathClearer{}, nil, zap.NewNop(), ArchiveReaperConfig{})
	require.NoError(t, reaper.Start())
	reaper.Stop()
}
