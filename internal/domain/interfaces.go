package domain

import (
	"context"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"
)

// BookingStore is the sole writer of booking state.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	GetBookingByPaymentSession(ctx context.Context, sessionID string) (*models.Booking, error)
	AttachPaymentSession(ctx context.Context, id, sessionID string, amount, attempt int64) (*models.Booking, error)
	ApplyPaymentEvent(ctx context.Context, id, eventID string, next models.Status) (*models.Booking, bool, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

// Catalog resolves bookable items by slug. Snapshots taken from it are
// copied onto bookings and never re-read.
type Catalog interface {
	Lookup(ctx context.Context, itemType models.ItemType, slug string) (*models.CatalogItem, error)
}

// PaymentProvider creates hosted checkout sessions at the external provider.
type PaymentProvider interface {
	CreateSession(ctx context.Context, req models.SessionRequest) (*models.CheckoutSession, error)
}

// CheckoutGateway owns the booking-to-provider session handshake.
type CheckoutGateway interface {
	StartCheckout(ctx context.Context, bookingID string) (*models.CheckoutSession, error)
}

// WebhookHandler consumes raw signed provider callbacks.
type WebhookHandler interface {
	HandleEvent(ctx context.Context, payload []byte, signature string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// DedupCache is a fast-path filter for duplicate webhook deliveries.
// The store's applied-events ledger stays authoritative; a cache miss or
// cache error only costs a database round trip.
type DedupCache interface {
	SeenEvent(ctx context.Context, bookingID, eventID string) (bool, error)
	MarkEvent(ctx context.Context, bookingID, eventID string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// LifecycleService is the façade the web client calls.
type LifecycleService interface {
	SubmitBooking(ctx context.Context, input SubmitBookingInput) (*models.Booking, error)
	StartCheckout(ctx context.Context, bookingID string) (*models.CheckoutSession, error)
	GetStatus(ctx context.Context, bookingID string) (*BookingStatus, error)
	ListBookings(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
}

// SubmitBookingInput carries client form fields. Deliberately no amount
// field: amounts are always recomputed server-side.
type SubmitBookingInput struct {
	ItemType   models.ItemType `json:"item_type"`
	ItemSlug   string          `json:"item_slug"`
	FullName   string          `json:"full_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	GuestCount int64           `json:"guest_count"`
	TravelDate string          `json:"travel_date"` // YYYY-MM-DD
}

// BookingStatus is the read model for result pages polling after redirect.
type BookingStatus struct {
	BookingID      string          `json:"booking_id"`
	Status         models.Status   `json:"status"`
	ItemType       models.ItemType `json:"item_type"`
	Item           models.ItemRef  `json:"item"`
	ComputedAmount int64           `json:"computed_amount"`
	Currency       string          `json:"currency"`
}
