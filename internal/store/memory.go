package store

import (
	"context"
	"sync"

	"github.com/spssppz/tennisOkt/internal/models"
)

// MemoryStore — хранилище в памяти для тестов. Копирует карту на входе и
// выходе, чтобы вызывающий код не делил память со "снапшотом".
type MemoryStore struct {
	mu       sync.Mutex
	bookings models.BookingMap

	// FailLoad/FailSave подменяют результат для проверки деградации.
	FailLoad error
	FailSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: models.BookingMap{}}
}

func (s *MemoryStore) Load(ctx context.Context) (models.BookingMap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailLoad != nil {
		return models.BookingMap{}, s.FailLoad
	}
	return s.bookings.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, bookings models.BookingMap) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.bookings = bookings.Clone()
	return nil
}

// Snapshot возвращает копию текущего содержимого для ассертов в тестах.
func (s *MemoryStore) Snapshot() models.BookingMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings.Clone()
}
