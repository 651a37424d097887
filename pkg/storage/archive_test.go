package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveSaveOpenDelete(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("reports/reports-1.csv", []byte("id\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, "reports/reports-1.csv", name)

	f, err := archive.Open(name)
	require.NoError(t, err)
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "id\n1\n", string(body))

	require.NoError(t, archive.Delete(name))
	require.NoError(t, archive.Delete(name))
	_, err = archive.Open(name)
	assert.Error(t, err)
}

func TestArchiveRejectsEscapingPaths(t *testing.T) {
	archive, err := NewArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Save("../outside.csv", []byte("x"))
	assert.ErrorIs(t, err, ErrOutsideArchive)
	_, err = archive.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrOutsideArchive)
}

func TestArchiveCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("old.csv", []byte("old"))
	require.NoError(t, err)
	_, err = archive.Save("fresh.csv", []byte("fresh"))
	require.NoError(t, err)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	deleted, err := archive.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, deleted)

	_, err = os.Stat(filepath.Join(dir, "fresh.csv"))
	assert.NoError(t, err)
}
