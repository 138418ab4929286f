package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spssppz/tennisOkt/internal/domain"
	"github.com/spssppz/tennisOkt/internal/events"
	"github.com/spssppz/tennisOkt/internal/models"
	"github.com/spssppz/tennisOkt/internal/schedule"

	"github.com/rs/zerolog"
)

// BookingService — движок бронирования. Каждая мутация перечитывает
// снапшот, валидирует переход и сразу сохраняет результат; критическая
// секция load-validate-save сериализуется по ключу слота, поэтому два
// конкурентных бронирования одного часа не теряют друг друга.
type BookingService struct {
	store      domain.Store
	sched      *schedule.Schedule
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     *zerolog.Logger

	slotLocks sync.Map // ключ слота -> *sync.Mutex
}

func NewBookingService(store domain.Store, sched *schedule.Schedule, eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	if sched == nil {
		sched = schedule.Default()
	}
	return &BookingService{
		store:      store,
		sched:      sched,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     logger,
	}
}

// Days возвращает дни скользящего окна для выбора даты.
func (s *BookingService) Days() []time.Time {
	return s.sched.Days()
}

// AvailableHours возвращает свободные часы на дату по возрастанию.
// Занят любой слот с непустым списком записей: ёмкость равна единице,
// кто первый забронировал — того и корт. Пустой результат — нормальный
// исход, не ошибка.
func (s *BookingService) AvailableHours(ctx context.Context, date time.Time) ([]int, error) {
	if !s.sched.ContainsDate(date) {
		return nil, ErrInvalidSlot
	}

	bookings, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	var free []int
	for _, hour := range s.sched.OfferableHours(date) {
		key := models.NewSlotKey(date, hour).String()
		if len(bookings[key]) == 0 {
			free = append(free, hour)
		}
	}
	return free, nil
}

// Book выполняет переход бронирования. Проверка «уже записан» идёт раньше
// проверки занятости: она более специфична. Именно здесь, а не на этапе
// показа свободных часов, решается гонка двух бронирующих.
func (s *BookingService) Book(ctx context.Context, date time.Time, hour int, actor domain.Actor) (models.SlotKey, error) {
	if !s.sched.ContainsDate(date) || !s.sched.ContainsHour(hour) {
		return models.SlotKey{}, ErrInvalidSlot
	}

	key := models.NewSlotKey(date, hour)
	unlock := s.lockSlot(key.String())
	defer unlock()

	bookings, err := s.store.Load(ctx)
	if err != nil {
		return models.SlotKey{}, fmt.Errorf("load bookings: %w", err)
	}

	seq := bookings[key.String()]
	for _, r := range seq {
		if r.ID == actor.ID {
			return models.SlotKey{}, ErrAlreadyBooked
		}
	}
	if len(seq) > 0 {
		return models.SlotKey{}, ErrSlotTaken
	}

	bookings[key.String()] = append(seq, models.Reservation{
		ID:       actor.ID,
		Name:     actor.Name,
		Username: actor.Username,
	})

	if err := s.store.Save(ctx, bookings); err != nil {
		s.logger.Error().Err(err).Str("slot", key.String()).Msg("save after booking failed")
		return models.SlotKey{}, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	s.publishEvent(events.EventReservationCreated, key, actor.ID, actor.Name, actor.Username)
	s.enqueueSync(ctx)

	return key, nil
}

// Cancel снимает запись пользователя со слота. Опустевший слот удаляется
// из карты целиком: пустые списки не хранятся.
func (s *BookingService) Cancel(ctx context.Context, key models.SlotKey, userID int64) error {
	unlock := s.lockSlot(key.String())
	defer unlock()

	bookings, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	seq, ok := bookings[key.String()]
	if !ok || len(seq) == 0 {
		return ErrSlotEmpty
	}

	var cancelled *models.Reservation
	rest := seq[:0:0]
	for _, r := range seq {
		if r.ID == userID && cancelled == nil {
			removed := r
			cancelled = &removed
			continue
		}
		rest = append(rest, r)
	}
	if cancelled == nil {
		return ErrNotYourSlot
	}

	if len(rest) == 0 {
		delete(bookings, key.String())
	} else {
		bookings[key.String()] = rest
	}

	if err := s.store.Save(ctx, bookings); err != nil {
		s.logger.Error().Err(err).Str("slot", key.String()).Msg("save after cancellation failed")
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	s.publishEvent(events.EventReservationCancelled, key, cancelled.ID, cancelled.Name, cancelled.Username)
	s.enqueueSync(ctx)

	return nil
}

// UserBookings возвращает слоты пользователя в хронологическом порядке.
// Формат ключа с нулями в датах сортируется лексикографически.
func (s *BookingService) UserBookings(ctx context.Context, userID int64) ([]models.SlotKey, error) {
	bookings, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	var raw []string
	for key := range bookings {
		if bookings.HasUser(key, userID) {
			raw = append(raw, key)
		}
	}
	sort.Strings(raw)

	keys := make([]models.SlotKey, 0, len(raw))
	for _, r := range raw {
		key, err := models.ParseSlotKey(r)
		if err != nil {
			s.logger.Warn().Str("slot", r).Msg("skipping unparseable slot key")
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// AllBookings возвращает все слоты с записями для отчёта администратора
// и зеркала в таблице. Без фильтров и пагинации: объёмы ограничены
// окном в семь дней.
func (s *BookingService) AllBookings(ctx context.Context) ([]domain.SlotEntry, error) {
	bookings, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	raw := make([]string, 0, len(bookings))
	for key := range bookings {
		raw = append(raw, key)
	}
	sort.Strings(raw)

	entries := make([]domain.SlotEntry, 0, len(raw))
	for _, r := range raw {
		key, err := models.ParseSlotKey(r)
		if err != nil {
			s.logger.Warn().Str("slot", r).Msg("skipping unparseable slot key")
			continue
		}
		entries = append(entries, domain.SlotEntry{
			Key:          key,
			Reservations: append([]models.Reservation(nil), bookings[r]...),
		})
	}
	return entries, nil
}

func (s *BookingService) lockSlot(key string) func() {
	v, _ := s.slotLocks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *BookingService) publishEvent(eventType string, key models.SlotKey, userID int64, name, username string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		SlotKey:  key.String(),
		Date:     key.Date.Format(models.DateLayout),
		Hour:     key.Hour,
		UserID:   userID,
		Name:     name,
		Username: username,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("slot", key.String()).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context) {
	if s.syncWorker == nil {
		return
	}
	if err := s.syncWorker.EnqueueSync(ctx); err != nil {
		s.logger.Error().Err(err).Msg("sheets enqueue error")
	}
}
