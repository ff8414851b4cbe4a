package models

import "time"

type ItemType string

const (
	ItemTypeTrek ItemType = "trek"
	ItemTypeTour ItemType = "tour"
)

func (t ItemType) Valid() bool {
	return t == ItemTypeTrek || t == ItemTypeTour
}

type Status string

const (
	StatusPending         Status = "pending"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusFailed          Status = "failed"
	StatusCancelled       Status = "cancelled"
)

// transitions is the single source of truth for the booking state machine.
// Anything not listed here is rejected.
var transitions = map[Status][]Status{
	StatusPending:         {StatusAwaitingPayment, StatusCancelled},
	StatusAwaitingPayment: {StatusPaid, StatusFailed, StatusCancelled},
	StatusFailed:          {StatusAwaitingPayment},
	StatusPaid:            {},
	StatusCancelled:       {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	allowed, known := transitions[s]
	return known && len(allowed) == 0
}

// ItemRef is the catalog snapshot copied onto the booking at creation time.
// It is never re-fetched, so later catalog edits cannot change a sold booking.
type ItemRef struct {
	Name     string `json:"name" yaml:"name"`
	Slug     string `json:"slug" yaml:"slug"`
	Location string `json:"location" yaml:"location"`
	Duration string `json:"duration" yaml:"duration"`
}

type TravelerInfo struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	GuestCount int64  `json:"guest_count"`
}

type Booking struct {
	ID               string       `json:"id"`
	ItemType         ItemType     `json:"item_type"`
	Item             ItemRef      `json:"item"`
	Traveler         TravelerInfo `json:"traveler"`
	TravelDate       time.Time    `json:"travel_date"`
	UnitPrice        int64        `json:"unit_price"` // smallest currency unit
	Currency         string       `json:"currency"`
	ComputedAmount   int64        `json:"computed_amount"`
	Status           Status       `json:"status"`
	PaymentSessionID string       `json:"payment_session_id,omitempty"`
	CheckoutAttempts int64        `json:"checkout_attempts"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Version          int64        `json:"version"`
}

// Amount recomputes the charge from the stored snapshot. Client input never
// participates in this calculation.
func (b *Booking) Amount() int64 {
	return b.UnitPrice * b.Traveler.GuestCount
}
