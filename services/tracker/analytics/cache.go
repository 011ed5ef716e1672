// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analytics implements the caching, request-coalescing, and
// retry-with-backoff layer that sits between the tracker's read endpoints and
// the insight generator, plus the orchestrator tying them together.
package analytics

import (
	"sync"
	"time"
)

// CacheEntry is a stored computation result. Staleness is evaluated lazily at
// read time against the operation's expiration window; entries are never
// proactively evicted.
type CacheEntry struct {
	Key      string
	Value    any
	StoredAt time.Time
}

// ResultCache is a process-wide, per-key store of last-computed results.
//
// # Description
//
// Get returns the entry regardless of freshness; the caller decides whether
// it is usable via Fresh. Put overwrites with the current timestamp.
// Invalidate removes an entry immediately (used when a user updates the
// income fact that seeds the computation).
//
// There is no eviction beyond overwrite-on-recompute and explicit
// invalidation. Growth is bounded by one entry per active user per operation
// kind, which is a documented limitation rather than a defect.
//
// # Thread Safety
//
// Safe for concurrent use. The entry map is protected by an RWMutex.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
	now     func() time.Time
}

// CacheOption configures a ResultCache.
type CacheOption func(*ResultCache)

// WithClock overrides the cache's time source. Tests use this to step time
// past expiration windows without sleeping.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewResultCache creates an empty ResultCache.
func NewResultCache(opts ...CacheOption) *ResultCache {
	c := &ResultCache{
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the entry for key if one exists, fresh or not.
func (c *ResultCache) Get(key string) (CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores or overwrites the entry for key with the current timestamp.
func (c *ResultCache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = CacheEntry{Key: key, Value: value, StoredAt: c.now()}
}

// Invalidate removes the entry for key, if any.
func (c *ResultCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Fresh reports whether the entry is still within its expiration window.
func (c *ResultCache) Fresh(entry CacheEntry, window time.Duration) bool {
	return c.now().Sub(entry.StoredAt) < window
}
