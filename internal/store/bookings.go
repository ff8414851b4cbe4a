package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"
)

const bookingColumns = `id, item_type, item_name, item_slug, item_location, item_duration,
                 full_name, email, phone, guest_count, travel_date, unit_price, currency,
                 computed_amount, status, payment_session_id, checkout_attempts,
                 created_at, updated_at, version`

// date(travel_date) normalizes the stored value to plain YYYY-MM-DD text.
const bookingSelect = `id, item_type, item_name, item_slug, item_location, item_duration,
                 full_name, email, phone, guest_count, date(travel_date), unit_price, currency,
                 computed_amount, status, payment_session_id, checkout_attempts,
                 created_at, updated_at, version`

func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (` + bookingColumns + `)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	_, err := s.ExecContext(ctx, query,
		booking.ID,
		booking.ItemType,
		booking.Item.Name,
		booking.Item.Slug,
		booking.Item.Location,
		booking.Item.Duration,
		booking.Traveler.FullName,
		booking.Traveler.Email,
		booking.Traveler.Phone,
		booking.Traveler.GuestCount,
		booking.TravelDate.Format("2006-01-02"),
		booking.UnitPrice,
		booking.Currency,
		booking.ComputedAmount,
		models.StatusPending,
		nullString(booking.PaymentSessionID),
		0,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.Status = models.StatusPending
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingSelect + ` FROM bookings WHERE id = ?`
	return s.scanBookingRow(s.QueryRowContext(ctx, query, id))
}

// GetBookingByPaymentSession resolves a webhook's session id to its booking.
func (s *Store) GetBookingByPaymentSession(ctx context.Context, sessionID string) (*models.Booking, error) {
	query := `SELECT ` + bookingSelect + ` FROM bookings WHERE payment_session_id = ?`
	return s.scanBookingRow(s.QueryRowContext(ctx, query, sessionID))
}

// AttachPaymentSession records a freshly created provider session and moves
// the booking into awaiting_payment. Only pending and failed bookings are
// eligible; failed ones get a retry under the new session id.
func (s *Store) AttachPaymentSession(ctx context.Context, id, sessionID string, amount, attempt int64) (*models.Booking, error) {
	var updated *models.Booking
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		booking, err := s.getBookingTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if !booking.Status.CanTransitionTo(models.StatusAwaitingPayment) {
			s.logger.Warn().
				Str("booking_id", id).
				Str("status", string(booking.Status)).
				Msg("attach payment session rejected")
			return ErrInvalidTransition
		}

		now := time.Now().UTC()
		query := `UPDATE bookings
                  SET payment_session_id = ?, computed_amount = ?, checkout_attempts = ?,
                      status = ?, version = version + 1, updated_at = ?
                  WHERE id = ? AND version = ?`
		result, err := tx.ExecContext(ctx, query,
			sessionID, amount, attempt, models.StatusAwaitingPayment, now, id, booking.Version)
		if err != nil {
			return fmt.Errorf("failed to attach payment session: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrConcurrentModification
		}

		booking.PaymentSessionID = sessionID
		booking.ComputedAmount = amount
		booking.CheckoutAttempts = attempt
		booking.Status = models.StatusAwaitingPayment
		booking.Version++
		booking.UpdatedAt = now
		updated = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyPaymentEvent is the only path into paid, failed or cancelled. The
// ledger check and the status update commit atomically, so re-delivery of an
// already-applied event id is a guaranteed no-op: the stored booking comes
// back unchanged and applied is false.
func (s *Store) ApplyPaymentEvent(ctx context.Context, id, eventID string, next models.Status) (*models.Booking, bool, error) {
	var (
		booking *models.Booking
		applied bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.getBookingTx(ctx, tx, id)
		if err != nil {
			return err
		}
		booking = b

		var seen int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM payment_events WHERE booking_id = ? AND event_id = ?`,
			id, eventID).Scan(&seen)
		if err != nil {
			return fmt.Errorf("failed to check event ledger: %w", err)
		}
		if seen > 0 {
			return nil
		}

		if !b.Status.CanTransitionTo(next) {
			s.logger.Warn().
				Str("booking_id", id).
				Str("event_id", eventID).
				Str("from", string(b.Status)).
				Str("to", string(next)).
				Msg("payment event rejected by state machine")
			return ErrInvalidTransition
		}

		now := time.Now().UTC()
		result, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
			next, now, id, b.Version)
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrConcurrentModification
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO payment_events (booking_id, event_id, status, created_at) VALUES (?, ?, ?, ?)`,
			id, eventID, next, now); err != nil {
			return fmt.Errorf("failed to record payment event: %w", err)
		}

		b.Status = next
		b.Version++
		b.UpdatedAt = now
		applied = true
		return nil
	})
	if err != nil {
		return booking, false, err
	}
	return booking, applied, nil
}

func (s *Store) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingSelect + `
              FROM bookings
              WHERE date(travel_date) >= ? AND date(travel_date) <= ?
              ORDER BY travel_date ASC, created_at ASC`
	rows, err := s.QueryContext(ctx, query,
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// AppliedEventCount reports how many ledger rows exist for a booking.
func (s *Store) AppliedEventCount(ctx context.Context, bookingID string) (int, error) {
	var count int
	err := s.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payment_events WHERE booking_id = ?`, bookingID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count payment events: %w", err)
	}
	return count, nil
}

func (s *Store) getBookingTx(ctx context.Context, tx *sql.Tx, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingSelect + ` FROM bookings WHERE id = ?`
	return s.scanBookingRow(tx.QueryRowContext(ctx, query, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanBookingRow(row rowScanner) (*models.Booking, error) {
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var (
		dateStr   string
		sessionID sql.NullString
	)
	err := row.Scan(
		&b.ID, &b.ItemType, &b.Item.Name, &b.Item.Slug, &b.Item.Location, &b.Item.Duration,
		&b.Traveler.FullName, &b.Traveler.Email, &b.Traveler.Phone, &b.Traveler.GuestCount,
		&dateStr, &b.UnitPrice, &b.Currency,
		&b.ComputedAmount, &b.Status, &sessionID, &b.CheckoutAttempts,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	if len(dateStr) >= 10 {
		dateStr = dateStr[:10]
	}
	b.TravelDate, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse travel date %s: %w", dateStr, err)
	}
	b.PaymentSessionID = sessionID.String
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
