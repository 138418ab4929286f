package worker

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/spssppz/tennisOkt/internal/domain"
	"github.com/spssppz/tennisOkt/internal/models"

	"github.com/rs/zerolog"
)

// SheetsWorker перезаписывает зеркало бронирований в Google Sheets.
// Задача не несёт данных: воркер сам читает актуальный снапшот, поэтому
// несколько подряд поставленных задач схлопываются в одну перезапись.
type SheetsWorker struct {
	store       domain.Store
	sheets      domain.SheetsWriter
	retryPolicy RetryPolicy
	queue       chan struct{}
	logger      *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(store domain.Store, sheets domain.SheetsWriter, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 1 * time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &SheetsWorker{
		store:       store,
		sheets:      sheets,
		retryPolicy: retry,
		queue:       make(chan struct{}, models.WorkerQueueSize),
		logger:      logger,
	}
}

// EnqueueSync schedules a full mirror rewrite; never blocks the caller.
func (w *SheetsWorker) EnqueueSync(ctx context.Context) error {
	select {
	case w.queue <- struct{}{}:
	default:
		// Очередь полна, значит перезапись уже запланирована
	}
	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Sheets worker started")
	defer w.logger.Info().Msg("Sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.queue:
			w.drainQueue()
			w.syncWithRetry(ctx)
		}
	}
}

// drainQueue схлопывает накопившиеся задачи: следующая перезапись
// всё равно возьмёт свежий снапшот.
func (w *SheetsWorker) drainQueue() {
	for {
		select {
		case <-w.queue:
		default:
			return
		}
	}
}

func (w *SheetsWorker) syncWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		err := w.syncOnce(ctx)
		if err == nil {
			return
		}

		w.logger.Warn().Err(err).Int("attempt", attempt).Msg("Sheets sync failed")

		if attempt == w.retryPolicy.MaxRetries {
			w.logger.Error().Err(err).Msg("Sheets sync gave up, mirror is stale until next booking")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}
}

func (w *SheetsWorker) syncOnce(ctx context.Context) error {
	syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	bookings, err := w.store.Load(syncCtx)
	if err != nil {
		return err
	}

	entries, err := entriesFromMap(bookings)
	if err != nil {
		return err
	}

	return w.sheets.ReplaceBookingsSheet(syncCtx, entries)
}

// entriesFromMap разворачивает карту в отсортированный по слотам список
func entriesFromMap(bookings models.BookingMap) ([]domain.SlotEntry, error) {
	keys := make([]string, 0, len(bookings))
	for key := range bookings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]domain.SlotEntry, 0, len(keys))
	for _, raw := range keys {
		key, err := models.ParseSlotKey(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, domain.SlotEntry{
			Key:          key,
			Reservations: append([]models.Reservation(nil), bookings[raw]...),
		})
	}
	return entries, nil
}
