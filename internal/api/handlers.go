package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/export"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/payment"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/service"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/store"
)

const maxWebhookBody = 1 << 20 // provider events are small; cap the body at 1 MiB

func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var input domain.SubmitBookingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := s.service.SubmitBooking(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"booking_id":      booking.ID,
		"status":          booking.Status,
		"computed_amount": booking.Amount(),
		"currency":        booking.Currency,
	})
}

// handleBookingByID routes /api/v1/bookings/{id} and
// /api/v1/bookings/{id}/checkout.
func (s *Server) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleGetStatus(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "checkout":
		s.handleCheckout(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request, bookingID string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status, err := s.service.GetStatus(r.Context(), bookingID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request, bookingID string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	session, err := s.service.StartCheckout(r.Context(), bookingID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"session_id":   session.SessionID,
		"redirect_url": session.RedirectURL,
	})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	signature := r.Header.Get(s.cfg.Payments.SignatureHeader)
	if err := s.webhooks.HandleEvent(r.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, payment.ErrSignature), errors.Is(err, payment.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			// Non-2xx makes the provider redeliver; the applied-events
			// ledger keeps the retry harmless.
			writeError(w, http.StatusInternalServerError, "event processing failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (s *Server) handleAdminBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.service.ListBookings(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

func (s *Server) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start, end, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := s.service.ListBookings(r.Context(), start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("bookings_%s_%s.xlsx",
		start.Format("20060102"), end.Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteBookingsReport(w, bookings, start, end); err != nil {
		s.logger.Error().Err(err).Msg("export error")
	}
}

// parseDateRange reads start/end query params (both inclusive), defaulting
// to the coming year of travel dates.
func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	start := now.AddDate(0, 0, -30)
	end := now.AddDate(1, 0, 0)

	if v := r.URL.Query().Get("start"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start must be a date in YYYY-MM-DD format")
		}
		start = parsed
	}
	if v := r.URL.Query().Get("end"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end must be a date in YYYY-MM-DD format")
		}
		end = parsed
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end must not be before start")
	}
	return start, end, nil
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, payment.ErrInvalidState), errors.Is(err, store.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPaymentsDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, payment.ErrGateway):
		writeError(w, http.StatusBadGateway, "payment provider unavailable")
	default:
		s.logger.Error().Err(err).Msg("request error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
