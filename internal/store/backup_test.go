package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spssppz/tennisOkt/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "bookings.json")
	backups := filepath.Join(dir, "backups")

	require.NoError(t, os.WriteFile(snapshot, []byte(`{"2025-06-10 09:00":[]}`), 0o644))

	logger := zerolog.New(io.Discard)
	svc := NewBackupService(snapshot, config.BackupConfig{
		Enabled:     true,
		StoragePath: backups,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backups)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(backups, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, `{"2025-06-10 09:00":[]}`, string(data))
}

func TestPerformBackupMissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(io.Discard)
	svc := NewBackupService(filepath.Join(dir, "nope.json"), config.BackupConfig{
		Enabled:     true,
		StoragePath: filepath.Join(dir, "backups"),
	}, &logger)

	// Снапшота ещё нет — это не ошибка
	assert.NoError(t, svc.PerformBackup())
}

func TestCleanupOldBackups(t *testing.T) {
	dir := t.TempDir()
	logger := zerolog.New(io.Discard)
	svc := NewBackupService(filepath.Join(dir, "bookings.json"), config.BackupConfig{
		Enabled:       true,
		StoragePath:   dir,
		RetentionDays: 0,
	}, &logger)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookings_old.json"), []byte("{}"), 0o644))

	// RetentionDays == 0 отключает чистку
	svc.CleanupOldBackups()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
