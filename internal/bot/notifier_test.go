package bot

import (
	"io"
	"testing"

	"github.com/spssppz/tennisOkt/internal/events"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminNotifier(t *testing.T) {
	logger := zerolog.New(io.Discard)
	tg := &mockTelegramService{}
	bus := events.NewEventBus()

	notifier := NewAdminNotifier(tg, 999, &logger)
	notifier.Subscribe(bus)

	payload := events.ReservationEventPayload{
		SlotKey:  "2025-06-11 09:00",
		Date:     "2025-06-11",
		Hour:     9,
		UserID:   1,
		Name:     "Иван Петров",
		Username: "ivan",
	}

	t.Run("Created", func(t *testing.T) {
		require.NoError(t, bus.PublishJSON(events.EventReservationCreated, payload))

		require.Len(t, tg.messages, 1)
		assert.Equal(t, int64(999), tg.messages[0].chatID)
		assert.Equal(t, "🎾 Новая бронь:\n📅 2025-06-11\n⏰ 09:00\n👤 Иван Петров (@ivan)", tg.messages[0].text)
	})

	t.Run("Cancelled", func(t *testing.T) {
		require.NoError(t, bus.PublishJSON(events.EventReservationCancelled, payload))

		require.Len(t, tg.messages, 2)
		assert.Equal(t, "🔕 Отмена:\n📅 2025-06-11 09:00\n👤 Иван Петров (@ivan)", tg.messages[1].text)
	})
}
