package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusAwaitingPayment, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPaid, false},
		{StatusAwaitingPayment, StatusPaid, true},
		{StatusAwaitingPayment, StatusFailed, true},
		{StatusAwaitingPayment, StatusCancelled, true},
		{StatusFailed, StatusAwaitingPayment, true},
		{StatusFailed, StatusPaid, false},
		{StatusPaid, StatusFailed, false},
		{StatusPaid, StatusCancelled, false},
		{StatusCancelled, StatusAwaitingPayment, false},
		{Status("bogus"), StatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusAwaitingPayment.Terminal())
	assert.False(t, StatusFailed.Terminal())
	assert.False(t, Status("bogus").Terminal())
}

func TestBookingAmount(t *testing.T) {
	b := &Booking{
		UnitPrice: 89900,
		Traveler:  TravelerInfo{GuestCount: 3},
	}
	assert.Equal(t, int64(269700), b.Amount())
}

func TestOutcomeTargetStatus(t *testing.T) {
	status, ok := OutcomeSucceeded.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusPaid, status)

	status, ok = OutcomeFailed.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusFailed, status)

	status, ok = OutcomeExpired.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusFailed, status)

	status, ok = OutcomeCancelled.TargetStatus()
	assert.True(t, ok)
	assert.Equal(t, StatusCancelled, status)

	_, ok = Outcome("chargeback").TargetStatus()
	assert.False(t, ok)
}

func TestItemTypeValid(t *testing.T) {
	assert.True(t, ItemTypeTrek.Valid())
	assert.True(t, ItemTypeTour.Valid())
	assert.False(t, ItemType("cruise").Valid())
	assert.False(t, ItemType("").Valid())
}
