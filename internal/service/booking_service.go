package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/catalog"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/config"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/events"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/metrics"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrPaymentsDisabled checkout is switched off in configuration.
var ErrPaymentsDisabled = errors.New("payments are disabled")

// BookingService is the lifecycle façade the HTTP layer calls. All writes
// go through the store; all provider traffic goes through the gateway.
type BookingService struct {
	store    domain.BookingStore
	catalog  domain.Catalog
	gateway  domain.CheckoutGateway
	eventBus domain.EventPublisher
	rules    config.BookingConfig
	payments config.PaymentsConfig
	logger   *zerolog.Logger
}

func NewBookingService(
	store domain.BookingStore,
	cat domain.Catalog,
	gateway domain.CheckoutGateway,
	eventBus domain.EventPublisher,
	rules config.BookingConfig,
	payments config.PaymentsConfig,
	logger *zerolog.Logger,
) *BookingService {
	if rules.MinLeadDays <= 0 {
		rules.MinLeadDays = models.DefaultMinLeadDays
	}
	if rules.MaxAdvanceDays <= 0 {
		rules.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	if rules.MaxGuests <= 0 {
		rules.MaxGuests = models.DefaultMaxGuests
	}
	return &BookingService{
		store:    store,
		catalog:  cat,
		gateway:  gateway,
		eventBus: eventBus,
		rules:    rules,
		payments: payments,
		logger:   logger,
	}
}

func (s *BookingService) SubmitBooking(ctx context.Context, input domain.SubmitBookingInput) (*models.Booking, error) {
	v := newValidation()

	if !input.ItemType.Valid() {
		v.add("item_type", "must be trek or tour")
	}
	if strings.TrimSpace(input.ItemSlug) == "" {
		v.add("item_slug", "is required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		v.add("full_name", "is required")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		v.add("email", "is not a valid email address")
	}
	if input.GuestCount < 1 {
		v.add("guest_count", "must be at least 1")
	}
	if input.GuestCount > int64(s.rules.MaxGuests) {
		v.add("guest_count", fmt.Sprintf("must not exceed %d", s.rules.MaxGuests))
	}

	travelDate, err := time.Parse("2006-01-02", input.TravelDate)
	if err != nil {
		v.add("travel_date", "must be a date in YYYY-MM-DD format")
	} else if err := s.validateTravelDate(travelDate); err != nil {
		v.add("travel_date", err.Error())
	}

	if v.failed() {
		return nil, v.err()
	}

	item, err := s.catalog.Lookup(ctx, input.ItemType, input.ItemSlug)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			v.add("item_slug", fmt.Sprintf("no %s found for this slug", input.ItemType))
			return nil, v.err()
		}
		return nil, err
	}

	booking := &models.Booking{
		ID:       uuid.NewString(),
		ItemType: input.ItemType,
		Item:     item.ItemRef,
		Traveler: models.TravelerInfo{
			FullName:   strings.TrimSpace(input.FullName),
			Email:      strings.TrimSpace(input.Email),
			Phone:      strings.TrimSpace(input.Phone),
			GuestCount: input.GuestCount,
		},
		TravelDate: travelDate,
		UnitPrice:  item.UnitPrice,
		Currency:   item.Currency,
		Status:     models.StatusPending,
	}

	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishBookingEvent(events.EventBookingCreated, booking)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("item", booking.Item.Slug).
		Int64("guests", booking.Traveler.GuestCount).
		Msg("booking created")
	return booking, nil
}

func (s *BookingService) StartCheckout(ctx context.Context, bookingID string) (*models.CheckoutSession, error) {
	// The toggle is read per request so operators can flip it without a
	// restart invalidating in-flight bookings.
	if !s.payments.Enabled {
		return nil, ErrPaymentsDisabled
	}

	session, err := s.gateway.StartCheckout(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking, err := s.store.GetBooking(ctx, bookingID); err == nil {
		s.publishBookingEvent(events.EventCheckoutStarted, booking)
	}
	return session, nil
}

func (s *BookingService) GetStatus(ctx context.Context, bookingID string) (*domain.BookingStatus, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	return &domain.BookingStatus{
		BookingID:      booking.ID,
		Status:         booking.Status,
		ItemType:       booking.ItemType,
		Item:           booking.Item,
		ComputedAmount: booking.ComputedAmount,
		Currency:       booking.Currency,
	}, nil
}

func (s *BookingService) ListBookings(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	return s.store.GetBookingsByDateRange(ctx, start, end)
}

func (s *BookingService) validateTravelDate(date time.Time) error {
	today := time.Now().Truncate(24 * time.Hour)

	minDate := today.AddDate(0, 0, s.rules.MinLeadDays)
	if date.Before(minDate) {
		return fmt.Errorf("must be at least %d days from today", s.rules.MinLeadDays)
	}

	maxDate := today.AddDate(0, 0, s.rules.MaxAdvanceDays)
	if date.After(maxDate) {
		return fmt.Errorf("must be within %d days from today", s.rules.MaxAdvanceDays)
	}

	return nil
}

func (s *BookingService) publishBookingEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		ItemType:   string(booking.ItemType),
		ItemSlug:   booking.Item.Slug,
		ItemName:   booking.Item.Name,
		Status:     string(booking.Status),
		Amount:     booking.Amount(),
		Currency:   booking.Currency,
		TravelDate: booking.TravelDate,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
