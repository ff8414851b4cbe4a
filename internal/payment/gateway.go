package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/metrics"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/rs/zerolog"
)

// Gateway owns the booking-to-provider handshake: it recomputes the charge
// from the stored snapshot, derives a deterministic idempotency key per
// checkout attempt and attaches the resulting session to the booking.
type Gateway struct {
	store    domain.BookingStore
	provider domain.PaymentProvider
	logger   *zerolog.Logger
}

func NewGateway(store domain.BookingStore, provider domain.PaymentProvider, logger *zerolog.Logger) *Gateway {
	return &Gateway{
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// IdempotencyKey is stable for a given booking attempt, so a double-click or
// network retry cannot create two live provider sessions for one attempt.
func IdempotencyKey(bookingID string, attempt int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", bookingID, attempt)))
	return hex.EncodeToString(sum[:])
}

func (g *Gateway) StartCheckout(ctx context.Context, bookingID string) (*models.CheckoutSession, error) {
	booking, err := g.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	var attempt int64
	switch booking.Status {
	case models.StatusPending, models.StatusFailed:
		attempt = booking.CheckoutAttempts + 1
	case models.StatusAwaitingPayment:
		// Re-entry before the payment settled: reuse the attempt's key so
		// the provider hands back the existing session.
		attempt = booking.CheckoutAttempts
	default:
		metrics.IncCheckout("invalid_state")
		return nil, fmt.Errorf("%w: status %s", ErrInvalidState, booking.Status)
	}

	// Never the client's number: the charge comes from the stored snapshot.
	amount := booking.Amount()

	session, err := g.provider.CreateSession(ctx, models.SessionRequest{
		Amount:         amount,
		Currency:       booking.Currency,
		IdempotencyKey: IdempotencyKey(booking.ID, attempt),
		Metadata: map[string]string{
			"booking_id": booking.ID,
		},
	})
	if err != nil {
		metrics.IncCheckout("gateway_error")
		return nil, err
	}

	if booking.Status == models.StatusAwaitingPayment {
		if session.SessionID != booking.PaymentSessionID {
			g.logger.Warn().
				Str("booking_id", booking.ID).
				Str("stored_session", booking.PaymentSessionID).
				Str("provider_session", session.SessionID).
				Msg("provider returned a different session for an open attempt")
		}
		metrics.IncCheckout("reused")
		return session, nil
	}

	if _, err := g.store.AttachPaymentSession(ctx, booking.ID, session.SessionID, amount, attempt); err != nil {
		return nil, err
	}

	g.logger.Info().
		Str("booking_id", booking.ID).
		Str("session_id", session.SessionID).
		Int64("amount", amount).
		Int64("attempt", attempt).
		Msg("checkout session attached")
	metrics.IncCheckout("created")
	return session, nil
}
