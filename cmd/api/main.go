package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/api"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/catalog"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/config"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/events"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/logging"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/metrics"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/models"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/payment"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/repository"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/service"
	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		logger.Error().Err(err).Str("catalog_path", cfg.Catalog.Path).Msg("load catalog")
		return err
	}
	logger.Info().Int("items", cat.Len()).Msg("catalog loaded")

	bookingStore, err := store.NewStore(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init store")
		return err
	}
	defer bookingStore.Close()

	dedup, redisClose := initDedupCache(cfg, &logger)
	if redisClose != nil {
		defer redisClose()
	}

	eventBus := events.NewEventBus()

	var gateway domain.CheckoutGateway
	if cfg.Payments.Enabled {
		client := payment.NewClient(cfg.Payments, &logger)
		gateway = payment.NewGateway(bookingStore, client, &logger)
	} else {
		logger.Warn().Msg("payments are disabled, checkout requests will be rejected")
	}

	reconciler := payment.NewReconciler(cfg.Payments.SigningSecret, bookingStore, dedup, eventBus, &logger)

	svc := service.NewBookingService(
		bookingStore, cat, gateway, eventBus, cfg.Booking, cfg.Payments, &logger)

	server := api.NewServer(cfg, svc, reconciler, dedup, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, server, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

// initDedupCache builds the webhook dedup cache: redis with an in-memory
// fallback when configured, memory only otherwise.
func initDedupCache(cfg *config.Config, logger *zerolog.Logger) (domain.DedupCache, func()) {
	ttl := time.Duration(models.DefaultDedupTTL) * time.Second
	memory := repository.NewMemoryEventCache(ttl)

	if cfg.Redis.Address == "" {
		return memory, nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = repository.Close(client)
		return memory, nil
	}
	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")

	primary := repository.NewRedisEventCache(client, ttl)
	failover := repository.NewFailoverEventCache(primary, memory, logger)
	return failover, func() { _ = repository.Close(client) }
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func serve(ctx context.Context, server *api.Server, logger *zerolog.Logger) error {
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
