package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/events"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/metrics"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/store"

	"github.com/rs/zerolog"
)

// Reconciler consumes provider callbacks and applies verified transitions.
// A nil return means the delivery is acknowledged; ErrSignature and
// ErrInvalidPayload mean reject, any other error asks the provider to retry.
type Reconciler struct {
	secret   string
	store    domain.BookingStore
	dedup    domain.DedupCache
	eventBus domain.EventPublisher
	dedupTTL time.Duration
	logger   *zerolog.Logger
}

func NewReconciler(
	secret string,
	bookingStore domain.BookingStore,
	dedup domain.DedupCache,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		secret:   secret,
		store:    bookingStore,
		dedup:    dedup,
		eventBus: eventBus,
		dedupTTL: time.Duration(models.DefaultDedupTTL) * time.Second,
		logger:   logger,
	}
}

func (r *Reconciler) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	// Authenticity first, before a single byte is parsed. No state may
	// change on a signature mismatch.
	if !VerifySignature(r.secret, payload, signature) {
		r.logger.Warn().Str("signature", signature).Msg("webhook signature mismatch")
		metrics.IncWebhook("invalid_signature")
		return ErrSignature
	}

	var event models.ProviderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		metrics.IncWebhook("invalid_payload")
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if event.EventID == "" || event.SessionID == "" {
		metrics.IncWebhook("invalid_payload")
		return fmt.Errorf("%w: missing event_id or session_id", ErrInvalidPayload)
	}

	target, ok := event.Outcome.TargetStatus()
	if !ok {
		// Unknown outcomes are acknowledged so the provider stops retrying.
		r.logger.Warn().
			Str("event_id", event.EventID).
			Str("outcome", string(event.Outcome)).
			Msg("unknown webhook outcome, acknowledged")
		metrics.IncWebhook("unknown_outcome")
		return nil
	}

	booking, err := r.store.GetBookingByPaymentSession(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A retry can never resolve an unknown session; ack and move on.
			r.logger.Warn().
				Str("event_id", event.EventID).
				Str("session_id", event.SessionID).
				Msg("webhook for unknown payment session, acknowledged")
			metrics.IncWebhook("unknown_booking")
			return nil
		}
		return err
	}

	if r.dedup != nil {
		if seen, err := r.dedup.SeenEvent(ctx, booking.ID, event.EventID); err == nil && seen {
			metrics.IncWebhook("duplicate")
			return nil
		}
	}

	_, applied, err := r.store.ApplyPaymentEvent(ctx, booking.ID, event.EventID, target)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			// Logged by the store; retrying the same event cannot succeed.
			metrics.IncWebhook("invalid_transition")
			return nil
		}
		return err
	}

	if !applied {
		metrics.IncWebhook("duplicate")
		r.markSeen(ctx, booking.ID, event.EventID)
		return nil
	}

	metrics.IncWebhook("applied")
	r.markSeen(ctx, booking.ID, event.EventID)
	r.publish(booking.ID, event, target)

	r.logger.Info().
		Str("booking_id", booking.ID).
		Str("event_id", event.EventID).
		Str("status", string(target)).
		Msg("payment event applied")
	return nil
}

func (r *Reconciler) markSeen(ctx context.Context, bookingID, eventID string) {
	if r.dedup == nil {
		return
	}
	if err := r.dedup.MarkEvent(ctx, bookingID, eventID); err != nil {
		r.logger.Debug().Err(err).Str("event_id", eventID).Msg("dedup mark failed")
	}
}

func (r *Reconciler) publish(bookingID string, event models.ProviderEvent, target models.Status) {
	if r.eventBus == nil {
		return
	}

	eventType := events.EventPaymentFailed
	switch target {
	case models.StatusPaid:
		eventType = events.EventPaymentSucceeded
	case models.StatusCancelled:
		eventType = events.EventBookingCancelled
	}

	payload := events.PaymentEventPayload{
		BookingID: bookingID,
		EventID:   event.EventID,
		SessionID: event.SessionID,
		Outcome:   string(event.Outcome),
		Status:    string(target),
	}
	if err := r.eventBus.PublishJSON(eventType, payload); err != nil {
		r.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", bookingID).Msg("publish event error")
	}
}
