package domain

import (
	"context"
	"time"

	"github.com/spssppz/tennisOkt/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Actor — тот, кто бронирует: данные берутся из Telegram-профиля.
type Actor struct {
	ID       int64
	Name     string
	Username string
}

// Store владеет персистентным снапшотом карты бронирований. Запись всегда
// заменяет снапшот целиком; частичных обновлений нет.
type Store interface {
	Load(ctx context.Context) (models.BookingMap, error)
	Save(ctx context.Context, bookings models.BookingMap) error
}

// SlotEntry — слот вместе с его записями, для отчётов и экспорта.
type SlotEntry struct {
	Key          models.SlotKey
	Reservations []models.Reservation
}

type BookingService interface {
	Days() []time.Time
	AvailableHours(ctx context.Context, date time.Time) ([]int, error)
	Book(ctx context.Context, date time.Time, hour int, actor Actor) (models.SlotKey, error)
	Cancel(ctx context.Context, key models.SlotKey, userID int64) error
	UserBookings(ctx context.Context, userID int64) ([]models.SlotKey, error)
	AllBookings(ctx context.Context) ([]SlotEntry, error)
}

type StateRepository interface {
	GetState(ctx context.Context, userID int64) (*models.UserState, error)
	SetState(ctx context.Context, state *models.UserState) error
	ClearState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type StateManager interface {
	GetUserState(ctx context.Context, userID int64) (*models.UserState, error)
	SetUserState(ctx context.Context, userID int64, step string, data map[string]interface{}) error
	ClearUserState(ctx context.Context, userID int64) error
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	SendMessage(chatID int64, text string) (tgbotapi.Message, error)
	SendWithKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) (tgbotapi.Message, error)
	SendWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) (tgbotapi.Message, error)
	AnswerCallback(callbackID string, text string) error
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// SheetsWriter зеркалит карту бронирований во внешнюю таблицу.
type SheetsWriter interface {
	ReplaceBookingsSheet(ctx context.Context, entries []SlotEntry) error
}

// SyncWorker принимает задачу на перезапись зеркала. Вызов не блокирует
// бронирование; доставка с ретраями — забота воркера.
type SyncWorker interface {
	EnqueueSync(ctx context.Context) error
}
