package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spssppz/tennisOkt/internal/models"

	"github.com/rs/zerolog"
)

// ErrCorruptSnapshot means the persisted file existed but could not be
// parsed. Load recovers with an empty map; the caller decides how loudly
// to complain.
var ErrCorruptSnapshot = errors.New("booking snapshot is corrupt")

// FileStore хранит всю карту бронирований в одном JSON-файле.
// Каждая запись — полная замена снапшота.
type FileStore struct {
	path   string
	logger *zerolog.Logger
}

func NewFileStore(path string, logger *zerolog.Logger) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create data directory: %w", err)
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the snapshot file location. Used by the backup service.
func (s *FileStore) Path() string {
	return s.path
}

// Load читает текущий снапшот. Отсутствующий файл — это пустая карта, а не
// ошибка. Битый файл тоже возвращает пустую карту, но с ErrCorruptSnapshot:
// процесс не падает, хотя записи при этом теряются.
func (s *FileStore) Load(ctx context.Context) (models.BookingMap, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.BookingMap{}, nil
		}
		return models.BookingMap{}, fmt.Errorf("store: read snapshot: %w", err)
	}

	var bookings models.BookingMap
	if err := json.Unmarshal(data, &bookings); err != nil {
		s.logger.Error().Err(err).Str("path", s.path).Msg("снапшот бронирований не читается, начинаем с пустого")
		return models.BookingMap{}, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if bookings == nil {
		bookings = models.BookingMap{}
	}

	return bookings, nil
}

// Save атомарно заменяет снапшот: пишем во временный файл рядом и
// переименовываем. Частично записанный файл при падении процесса не
// затирает предыдущий снапшот.
func (s *FileStore) Save(ctx context.Context, bookings models.BookingMap) error {
	if bookings == nil {
		bookings = models.BookingMap{}
	}

	data, err := json.MarshalIndent(bookings, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".bookings-*.json")
	if err != nil {
		return fmt.Errorf("store: create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: replace snapshot: %w", err)
	}

	return nil
}
