package bot

import (
	"encoding/json"
	"fmt"

	"github.com/spssppz/tennisOkt/internal/domain"
	"github.com/spssppz/tennisOkt/internal/events"

	"github.com/rs/zerolog"
)

// AdminNotifier шлёт админу сообщение о каждой новой или отменённой записи.
// Слушает шину событий, чтобы бронирование не зависело от доставки
// уведомления.
type AdminNotifier struct {
	tgService   domain.TelegramService
	adminChatID int64
	logger      *zerolog.Logger
}

func NewAdminNotifier(tgService domain.TelegramService, adminChatID int64, logger *zerolog.Logger) *AdminNotifier {
	return &AdminNotifier{
		tgService:   tgService,
		adminChatID: adminChatID,
		logger:      logger,
	}
}

func (n *AdminNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.handleCreated)
	bus.Subscribe(events.EventReservationCancelled, n.handleCancelled)
}

func (n *AdminNotifier) handleCreated(event *events.Event) error {
	payload, err := n.decode(event)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🎾 Новая бронь:\n📅 %s\n⏰ %02d:00\n👤 %s (@%s)",
		payload.Date, payload.Hour, payload.Name, payload.Username)
	return n.send(text)
}

func (n *AdminNotifier) handleCancelled(event *events.Event) error {
	payload, err := n.decode(event)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🔕 Отмена:\n📅 %s\n👤 %s (@%s)",
		payload.SlotKey, payload.Name, payload.Username)
	return n.send(text)
}

func (n *AdminNotifier) decode(event *events.Event) (*events.ReservationEventPayload, error) {
	var payload events.ReservationEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("Failed to decode reservation event")
		return nil, err
	}
	return &payload, nil
}

func (n *AdminNotifier) send(text string) error {
	if _, err := n.tgService.SendMessage(n.adminChatID, text); err != nil {
		n.logger.Error().Err(err).Int64("admin_chat_id", n.adminChatID).Msg("Failed to notify admin")
		return err
	}
	return nil
}
