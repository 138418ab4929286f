package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spssppz/tennisOkt/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := NewFileStore(filepath.Join(t.TempDir(), "data", "bookings.json"), &logger)
	require.NoError(t, err)
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	bookings := models.BookingMap{
		"2025-06-10 09:00": {{ID: 1, Name: "Иван Петров", Username: "ivan"}},
		"2025-06-11 18:00": {{ID: 2, Name: "Мария", Username: "maria"}},
	}

	require.NoError(t, s.Save(ctx, bookings))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, bookings, got)
}

func TestFileStoreMissingFile(t *testing.T) {
	s := newTestFileStore(t)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	require.NoError(t, os.WriteFile(s.Path(), []byte("{broken json"), 0o644))

	got, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileStoreNullSnapshot(t *testing.T) {
	// Файл с "null" — валидный JSON, но карта должна остаться пригодной
	ctx := context.Background()
	s := newTestFileStore(t)

	require.NoError(t, os.WriteFile(s.Path(), []byte("null"), 0o644))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestFileStoreSaveReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	first := models.BookingMap{"2025-06-10 09:00": {{ID: 1, Name: "Иван"}}}
	require.NoError(t, s.Save(ctx, first))

	second := models.BookingMap{"2025-06-12 10:00": {{ID: 2, Name: "Мария"}}}
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	// Временных файлов после записи не остаётся
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "bookings.json", entries[0].Name())
}

func TestFileStoreEmptyPath(t *testing.T) {
	logger := zerolog.New(io.Discard)
	_, err := NewFileStore("", &logger)
	assert.Error(t, err)
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	bookings := models.BookingMap{"2025-06-10 09:00": {{ID: 1, Name: "Иван"}}}
	require.NoError(t, s.Save(ctx, bookings))

	// Мутация исходной карты не должна протекать в хранилище
	bookings["2025-06-10 09:00"][0].Name = "Другой"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Иван", got["2025-06-10 09:00"][0].Name)
}
