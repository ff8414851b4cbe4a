package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/config"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/metrics"

	"github.com/rs/zerolog"
)

// Server exposes the booking lifecycle API to the storefront and the
// payment provider's webhook.
type Server struct {
	cfg      *config.Config
	service  domain.LifecycleService
	webhooks domain.WebhookHandler
	server   *http.Server
	auth     *Auth
	logger   *zerolog.Logger
}

func NewServer(
	cfg *config.Config,
	service domain.LifecycleService,
	webhooks domain.WebhookHandler,
	cache domain.DedupCache,
	logger *zerolog.Logger,
) *Server {
	srv := &Server{
		cfg:      cfg,
		service:  service,
		webhooks: webhooks,
		auth:     NewAuth(cfg.Admin, cache),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/payments/webhook", srv.handleWebhook)
	mux.Handle("/api/v1/admin/bookings", srv.auth.Wrap("read:bookings", http.HandlerFunc(srv.handleAdminBookings)))
	mux.Handle("/api/v1/admin/bookings/export", srv.auth.Wrap("export:bookings", http.HandlerFunc(srv.handleAdminExport)))
	mux.HandleFunc("/healthz", srv.handleHealth)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the configured handler for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
