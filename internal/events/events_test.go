package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe("test_event", func(event *Event) error {
		got = append(got, event)
		return nil
	})

	bus.Publish(&Event{Type: "test_event", Payload: []byte("one")})
	bus.Publish(&Event{Type: "other_event", Payload: []byte("two")})

	require.Len(t, got, 1)
	assert.Equal(t, "test_event", got[0].Type)
	assert.Equal(t, []byte("one"), got[0].Payload)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	handler := func(event *Event) error {
		calls++
		return nil
	}
	bus.Subscribe("evt", handler)
	bus.Subscribe("evt", handler)

	bus.Publish(&Event{Type: "evt"})
	assert.Equal(t, 2, calls)
}

func TestEventBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewEventBus()

	second := false
	bus.Subscribe("evt", func(event *Event) error {
		return errors.New("boom")
	})
	bus.Subscribe("evt", func(event *Event) error {
		second = true
		return nil
	})

	bus.Publish(&Event{Type: "evt"})
	assert.True(t, second)
}

func TestPublishJSON(t *testing.T) {
	bus := NewEventBus()

	var got ReservationEventPayload
	bus.Subscribe(EventReservationCreated, func(event *Event) error {
		return json.Unmarshal(event.Payload, &got)
	})

	payload := ReservationEventPayload{
		SlotKey:  "2025-06-08 09:00",
		Date:     "2025-06-08",
		Hour:     9,
		UserID:   42,
		Name:     "Иван",
		Username: "ivan",
	}
	require.NoError(t, bus.PublishJSON(EventReservationCreated, payload))

	assert.Equal(t, payload, got)
}

func TestPublishNilSafe(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(nil)
	})
}
