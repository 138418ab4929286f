package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spssppz/tennisOkt/internal/domain"
	"github.com/spssppz/tennisOkt/internal/events"
	"github.com/spssppz/tennisOkt/internal/models"
	"github.com/spssppz/tennisOkt/internal/schedule"
	"github.com/spssppz/tennisOkt/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 10, 12, 30, 0, 0, time.Local)

func newTestService(t *testing.T, memStore *store.MemoryStore) *BookingService {
	t.Helper()

	hours := make([]int, 0, 12)
	for h := 8; h <= 19; h++ {
		hours = append(hours, h)
	}
	sched, err := schedule.New(7, hours)
	require.NoError(t, err)
	sched = sched.WithClock(func() time.Time { return testNow })

	logger := zerolog.New(io.Discard)
	return NewBookingService(memStore, sched, nil, nil, &logger)
}

func day(offset int) time.Time {
	return testNow.AddDate(0, 0, offset)
}

func TestBookingServiceBook(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{ID: 100, Name: "Иван Петров", Username: "ivan"}

	t.Run("Success", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore)

		key, err := svc.Book(ctx, day(1), 9, actor)
		require.NoError(t, err)
		assert.Equal(t, day(1).Format(models.DateLayout)+" 09:00", key.String())

		snapshot := memStore.Snapshot()
		require.Len(t, snapshot[key.String()], 1)
		assert.Equal(t, actor.ID, snapshot[key.String()][0].ID)
		assert.Equal(t, actor.Name, snapshot[key.String()][0].Name)
		assert.Equal(t, actor.Username, snapshot[key.String()][0].Username)
	})

	t.Run("DateOutsideWindow", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.Book(ctx, day(7), 9, actor)
		assert.ErrorIs(t, err, ErrInvalidSlot)

		_, err = svc.Book(ctx, day(-1), 9, actor)
		assert.ErrorIs(t, err, ErrInvalidSlot)
	})

	t.Run("HourOutsideSchedule", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.Book(ctx, day(1), 7, actor)
		assert.ErrorIs(t, err, ErrInvalidSlot)

		_, err = svc.Book(ctx, day(1), 20, actor)
		assert.ErrorIs(t, err, ErrInvalidSlot)
	})

	t.Run("SlotTaken", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.Book(ctx, day(2), 10, actor)
		require.NoError(t, err)

		_, err = svc.Book(ctx, day(2), 10, domain.Actor{ID: 200, Name: "Мария"})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("AlreadyBookedBeatsTaken", func(t *testing.T) {
		// Повторная попытка того же пользователя — это «вы уже записаны»,
		// а не «слот занят», хотя формально верно и то и другое.
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.Book(ctx, day(2), 11, actor)
		require.NoError(t, err)

		_, err = svc.Book(ctx, day(2), 11, actor)
		assert.ErrorIs(t, err, ErrAlreadyBooked)
	})

	t.Run("RejectionIsIdempotent", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore)

		_, err := svc.Book(ctx, day(3), 15, actor)
		require.NoError(t, err)
		before := memStore.Snapshot()

		for i := 0; i < 3; i++ {
			_, err = svc.Book(ctx, day(3), 15, actor)
			assert.ErrorIs(t, err, ErrAlreadyBooked)
		}
		assert.Equal(t, before, memStore.Snapshot())
	})

	t.Run("SaveFailure", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		memStore.FailSave = errors.New("disk full")
		svc := newTestService(t, memStore)

		_, err := svc.Book(ctx, day(1), 9, actor)
		assert.ErrorIs(t, err, ErrSaveFailed)
	})

	t.Run("LoadFailure", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		memStore.FailLoad = errors.New("io error")
		svc := newTestService(t, memStore)

		_, err := svc.Book(ctx, day(1), 9, actor)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidSlot)
	})
}

func TestBookingServiceConcurrentBook(t *testing.T) {
	// Два пользователя одновременно бронируют один слот: ровно один
	// выигрывает, в снапшоте остаётся одна запись.
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	svc := newTestService(t, memStore)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := domain.Actor{ID: int64(1000 + i), Name: fmt.Sprintf("Игрок %d", i)}
			_, errs[i] = svc.Book(ctx, day(1), 18, actor)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners)

	key := models.NewSlotKey(day(1), 18)
	assert.Len(t, memStore.Snapshot()[key.String()], 1)
}

func TestBookingServiceAvailableHours(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{ID: 1, Name: "Анна"}

	t.Run("FutureDayAllFree", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		hours, err := svc.AvailableHours(ctx, day(1))
		require.NoError(t, err)
		assert.Equal(t, []int{8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, hours)
	})

	t.Run("TodayDropsPassedHours", func(t *testing.T) {
		// Сейчас 12:30: часы до 12 включительно не предлагаются
		svc := newTestService(t, store.NewMemoryStore())

		hours, err := svc.AvailableHours(ctx, day(0))
		require.NoError(t, err)
		assert.Equal(t, []int{13, 14, 15, 16, 17, 18, 19}, hours)
	})

	t.Run("BookedSlotHidden", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.Book(ctx, day(1), 10, actor)
		require.NoError(t, err)

		hours, err := svc.AvailableHours(ctx, day(1))
		require.NoError(t, err)
		assert.NotContains(t, hours, 10)
		assert.Contains(t, hours, 9)
	})

	t.Run("OutsideWindow", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		_, err := svc.AvailableHours(ctx, day(7))
		assert.ErrorIs(t, err, ErrInvalidSlot)
	})
}

func TestBookingServiceCancel(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{ID: 100, Name: "Иван", Username: "ivan"}

	t.Run("Success", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore)

		key, err := svc.Book(ctx, day(1), 9, actor)
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, key, actor.ID))

		// Опустевший слот удалён из карты, а не оставлен пустым списком
		_, exists := memStore.Snapshot()[key.String()]
		assert.False(t, exists)
	})

	t.Run("EmptySlot", func(t *testing.T) {
		svc := newTestService(t, store.NewMemoryStore())

		key := models.NewSlotKey(day(1), 9)
		err := svc.Cancel(ctx, key, actor.ID)
		assert.ErrorIs(t, err, ErrSlotEmpty)
	})

	t.Run("SomeoneElsesSlot", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore)

		key, err := svc.Book(ctx, day(1), 9, actor)
		require.NoError(t, err)

		err = svc.Cancel(ctx, key, 999)
		assert.ErrorIs(t, err, ErrNotYourSlot)

		// Чужая запись не тронута
		assert.Len(t, memStore.Snapshot()[key.String()], 1)
	})

	t.Run("SaveFailure", func(t *testing.T) {
		memStore := store.NewMemoryStore()
		svc := newTestService(t, memStore)

		key, err := svc.Book(ctx, day(1), 9, actor)
		require.NoError(t, err)

		memStore.FailSave = errors.New("disk full")
		err = svc.Cancel(ctx, key, actor.ID)
		assert.ErrorIs(t, err, ErrSaveFailed)
	})
}

func TestBookingServiceUserBookings(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	svc := newTestService(t, memStore)

	actor := domain.Actor{ID: 100, Name: "Иван"}
	other := domain.Actor{ID: 200, Name: "Мария"}

	// Бронируем вразнобой, ожидаем хронологический порядок
	_, err := svc.Book(ctx, day(3), 9, actor)
	require.NoError(t, err)
	_, err = svc.Book(ctx, day(1), 19, actor)
	require.NoError(t, err)
	_, err = svc.Book(ctx, day(1), 8, actor)
	require.NoError(t, err)
	_, err = svc.Book(ctx, day(2), 10, other)
	require.NoError(t, err)

	keys, err := svc.UserBookings(ctx, actor.ID)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, day(1).Format(models.DateLayout)+" 08:00", keys[0].String())
	assert.Equal(t, day(1).Format(models.DateLayout)+" 19:00", keys[1].String())
	assert.Equal(t, day(3).Format(models.DateLayout)+" 09:00", keys[2].String())

	none, err := svc.UserBookings(ctx, 555)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBookingServiceAllBookings(t *testing.T) {
	ctx := context.Background()
	memStore := store.NewMemoryStore()
	svc := newTestService(t, memStore)

	_, err := svc.Book(ctx, day(2), 9, domain.Actor{ID: 1, Name: "Иван", Username: "ivan"})
	require.NoError(t, err)
	_, err = svc.Book(ctx, day(1), 10, domain.Actor{ID: 2, Name: "Мария", Username: "maria"})
	require.NoError(t, err)

	entries, err := svc.AllBookings(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, day(1).Format(models.DateLayout)+" 10:00", entries[0].Key.String())
	assert.Equal(t, day(2).Format(models.DateLayout)+" 09:00", entries[1].Key.String())
	require.Len(t, entries[0].Reservations, 1)
	assert.Equal(t, "Мария", entries[0].Reservations[0].Name)
}

func TestBookingServicePublishesEvents(t *testing.T) {
	ctx := context.Background()
	bus := events.NewEventBus()

	var mu sync.Mutex
	var seen []string
	handler := func(event *events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, event.Type)
		return nil
	}
	bus.Subscribe(events.EventReservationCreated, handler)
	bus.Subscribe(events.EventReservationCancelled, handler)

	memStore := store.NewMemoryStore()
	hours := []int{8, 9, 10}
	sched, err := schedule.New(7, hours)
	require.NoError(t, err)
	sched = sched.WithClock(func() time.Time { return testNow })

	logger := zerolog.New(io.Discard)
	svc := NewBookingService(memStore, sched, bus, nil, &logger)

	actor := domain.Actor{ID: 1, Name: "Иван", Username: "ivan"}
	key, err := svc.Book(ctx, day(1), 9, actor)
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, key, actor.ID))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{events.EventReservationCreated, events.EventReservationCancelled}, seen)
}
