package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	// File-backed so every pooled connection sees the same database.
	path := filepath.Join(t.TempDir(), "bookings.db")
	s, err := NewStore(path, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testBooking(id string) *models.Booking {
	return &models.Booking{
		ID:       id,
		ItemType: models.ItemTypeTrek,
		Item: models.ItemRef{
			Name:     "Annapurna Base Camp Trek",
			Slug:     "annapurna-base-camp",
			Location: "Annapurna, Nepal",
			Duration: "11 days",
		},
		Traveler: models.TravelerInfo{
			FullName:   "Asha Gurung",
			Email:      "asha@example.com",
			Phone:      "+9779800000000",
			GuestCount: 2,
		},
		TravelDate: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		UnitPrice:  89900,
		Currency:   "USD",
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-1")
	require.NoError(t, s.CreateBooking(ctx, b))

	assert.Equal(t, models.StatusPending, b.Status)
	assert.Equal(t, int64(1), b.Version)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := s.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-1", got.ID)
	assert.Equal(t, models.ItemTypeTrek, got.ItemType)
	assert.Equal(t, "annapurna-base-camp", got.Item.Slug)
	assert.Equal(t, "Asha Gurung", got.Traveler.FullName)
	assert.Equal(t, int64(2), got.Traveler.GuestCount)
	assert.Equal(t, "2026-10-15", got.TravelDate.Format("2006-01-02"))
	assert.Equal(t, int64(89900), got.UnitPrice)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, got.PaymentSessionID)
	assert.Equal(t, int64(0), got.CheckoutAttempts)
}

func TestGetBookingNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetBooking(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetBookingByPaymentSession(context.Background(), "sess-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachPaymentSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-2")
	require.NoError(t, s.CreateBooking(ctx, b))

	updated, err := s.AttachPaymentSession(ctx, "bk-2", "sess-1", 179800, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingPayment, updated.Status)
	assert.Equal(t, "sess-1", updated.PaymentSessionID)
	assert.Equal(t, int64(179800), updated.ComputedAmount)
	assert.Equal(t, int64(1), updated.CheckoutAttempts)
	assert.Equal(t, int64(2), updated.Version)

	// Webhook lookups resolve the session back to the booking.
	got, err := s.GetBookingByPaymentSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "bk-2", got.ID)
}

func TestAttachPaymentSessionInvalidStates(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-3")
	require.NoError(t, s.CreateBooking(ctx, b))

	_, err := s.AttachPaymentSession(ctx, "bk-3", "sess-1", 179800, 1)
	require.NoError(t, err)

	// Paid is terminal; no further session may be attached.
	_, applied, err := s.ApplyPaymentEvent(ctx, "bk-3", "evt-1", models.StatusPaid)
	require.NoError(t, err)
	require.True(t, applied)

	_, err = s.AttachPaymentSession(ctx, "bk-3", "sess-2", 179800, 2)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = s.AttachPaymentSession(ctx, "missing", "sess-3", 100, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttachPaymentSessionRetryAfterFailure(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-4")
	require.NoError(t, s.CreateBooking(ctx, b))

	_, err := s.AttachPaymentSession(ctx, "bk-4", "sess-1", 179800, 1)
	require.NoError(t, err)

	_, applied, err := s.ApplyPaymentEvent(ctx, "bk-4", "evt-fail", models.StatusFailed)
	require.NoError(t, err)
	require.True(t, applied)

	// A failed booking can be retried under a new session.
	updated, err := s.AttachPaymentSession(ctx, "bk-4", "sess-2", 179800, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingPayment, updated.Status)
	assert.Equal(t, "sess-2", updated.PaymentSessionID)
	assert.Equal(t, int64(2), updated.CheckoutAttempts)
}

func TestApplyPaymentEventIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-5")
	require.NoError(t, s.CreateBooking(ctx, b))
	_, err := s.AttachPaymentSession(ctx, "bk-5", "sess-1", 179800, 1)
	require.NoError(t, err)

	first, applied, err := s.ApplyPaymentEvent(ctx, "bk-5", "evt-1", models.StatusPaid)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.StatusPaid, first.Status)

	// Same event id again: no-op, nothing moves, not even updated_at.
	second, applied, err := s.ApplyPaymentEvent(ctx, "bk-5", "evt-1", models.StatusPaid)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, models.StatusPaid, second.Status)
	assert.Equal(t, first.Version, second.Version)
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))

	count, err := s.AppliedEventCount(ctx, "bk-5")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyPaymentEventInvalidTransition(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-6")
	require.NoError(t, s.CreateBooking(ctx, b))
	_, err := s.AttachPaymentSession(ctx, "bk-6", "sess-1", 179800, 1)
	require.NoError(t, err)

	_, applied, err := s.ApplyPaymentEvent(ctx, "bk-6", "evt-paid", models.StatusPaid)
	require.NoError(t, err)
	require.True(t, applied)

	// A late failure with a fresh event id must not demote a paid booking.
	_, _, err = s.ApplyPaymentEvent(ctx, "bk-6", "evt-late-fail", models.StatusFailed)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := s.GetBooking(ctx, "bk-6")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)

	// The rejected event must not enter the ledger.
	count, err := s.AppliedEventCount(ctx, "bk-6")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyPaymentEventDirectFromPending(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-7")
	require.NoError(t, s.CreateBooking(ctx, b))

	// pending -> paid skips awaiting_payment and is rejected.
	_, _, err := s.ApplyPaymentEvent(ctx, "bk-7", "evt-1", models.StatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// pending -> cancelled is a legal abandonment path.
	got, applied, err := s.ApplyPaymentEvent(ctx, "bk-7", "evt-2", models.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.StatusCancelled, got.Status)
}

func TestApplyPaymentEventConcurrentDeliveries(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	b := testBooking("bk-8")
	require.NoError(t, s.CreateBooking(ctx, b))
	_, err := s.AttachPaymentSession(ctx, "bk-8", "sess-1", 179800, 1)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	appliedCount := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := s.ApplyPaymentEvent(ctx, "bk-8", "evt-1", models.StatusPaid)
			if err == nil {
				appliedCount <- applied
			}
		}()
	}
	wg.Wait()
	close(appliedCount)

	applied := 0
	for a := range appliedCount {
		if a {
			applied++
		}
	}
	assert.Equal(t, 1, applied, "exactly one delivery may win")

	got, err := s.GetBooking(ctx, "bk-8")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, got.Status)

	count, err := s.AppliedEventCount(ctx, "bk-8")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetBookingsByDateRange(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		b := testBooking("bk-range-" + d.Format("20060102"))
		b.TravelDate = d
		b.Traveler.GuestCount = int64(i + 1)
		require.NoError(t, s.CreateBooking(ctx, b))
	}

	got, err := s.GetBookingsByDateRange(ctx,
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-10-01", got[0].TravelDate.Format("2006-01-02"))
	assert.Equal(t, "2026-10-15", got[1].TravelDate.Format("2006-01-02"))
}
