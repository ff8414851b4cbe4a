package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONNotifiesSubscribers(t *testing.T) {
	bus := NewEventBus()

	var got []PaymentEventPayload
	bus.Subscribe(EventPaymentSucceeded, func(e *Event) error {
		var p PaymentEventPayload
		require.NoError(t, json.Unmarshal(e.Payload, &p))
		got = append(got, p)
		return nil
	})

	err := bus.PublishJSON(EventPaymentSucceeded, PaymentEventPayload{
		BookingID: "bk-1",
		EventID:   "evt-1",
		Status:    "paid",
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "bk-1", got[0].BookingID)
	assert.Equal(t, "paid", got[0].Status)
}

func TestPublishOnlyMatchingType(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventPaymentFailed, PaymentEventPayload{BookingID: "bk-1"}))
	assert.Equal(t, 0, calls)

	require.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{BookingID: "bk-1"}))
	assert.Equal(t, 1, calls)
}

func TestPublishJSONNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, BookingEventPayload{}))
}

func TestMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	first, second := 0, 0
	bus.Subscribe(EventBookingCancelled, func(e *Event) error { first++; return nil })
	bus.Subscribe(EventBookingCancelled, func(e *Event) error { second++; return nil })

	require.NoError(t, bus.PublishJSON(EventBookingCancelled, PaymentEventPayload{BookingID: "bk-1"}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
