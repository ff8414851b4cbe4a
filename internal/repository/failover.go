package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/opalvedansh/eraya-wellness-travels-sub000/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverEventCache serves from the primary (Redis) cache and falls back to
// the in-memory one when the primary errors, probing for recovery once a
// minute. Losing the cache only costs extra database lookups; the ledger
// still rejects duplicates.
type FailoverEventCache struct {
	primary   domain.DedupCache
	fallback  domain.DedupCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverEventCache(primary, fallback domain.DedupCache, logger *zerolog.Logger) *FailoverEventCache {
	return &FailoverEventCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverEventCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary event cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverEventCache) shouldProbe() bool {
	return time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute
}

func (r *FailoverEventCache) SeenEvent(ctx context.Context, bookingID, eventID string) (bool, error) {
	if !r.isDown.Load() {
		seen, err := r.primary.SeenEvent(ctx, bookingID, eventID)
		if err == nil {
			return seen, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		seen, err := r.primary.SeenEvent(ctx, bookingID, eventID)
		if err == nil {
			r.isDown.Store(false)
			return seen, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.SeenEvent(ctx, bookingID, eventID)
}

func (r *FailoverEventCache) MarkEvent(ctx context.Context, bookingID, eventID string) error {
	if !r.isDown.Load() {
		err := r.primary.MarkEvent(ctx, bookingID, eventID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.MarkEvent(ctx, bookingID, eventID)
}

func (r *FailoverEventCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
