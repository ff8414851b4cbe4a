package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryEventCache is the in-process fallback used when Redis is absent or
// down. Markers expire lazily on read.
type MemoryEventCache struct {
	events     sync.Map
	rateLimits sync.Map
	ttl        time.Duration
}

func NewMemoryEventCache(ttl time.Duration) *MemoryEventCache {
	return &MemoryEventCache{
		ttl: ttl,
	}
}

type eventEntry struct {
	expiresAt time.Time
}

func (r *MemoryEventCache) SeenEvent(ctx context.Context, bookingID, eventID string) (bool, error) {
	val, ok := r.events.Load(eventKey(bookingID, eventID))
	if !ok {
		return false, nil
	}
	entry := val.(*eventEntry)
	if time.Now().After(entry.expiresAt) {
		r.events.Delete(eventKey(bookingID, eventID))
		return false, nil
	}
	return true, nil
}

func (r *MemoryEventCache) MarkEvent(ctx context.Context, bookingID, eventID string) error {
	r.events.Store(eventKey(bookingID, eventID), &eventEntry{expiresAt: time.Now().Add(r.ttl)})
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryEventCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, ok := r.rateLimits.Load(key)

	var entry *rateLimitEntry
	if !ok {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
	} else {
		entry = val.(*rateLimitEntry)
		if now.After(entry.expiresAt) {
			entry.count = 1
			entry.expiresAt = now.Add(window)
		} else {
			entry.count++
		}
	}

	r.rateLimits.Store(key, entry)
	return entry.count <= limit, nil
}
