// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Coalescer ensures at most one computation is in flight per key. Concurrent
// callers for the same key attach to the shared in-flight result instead of
// triggering duplicate external calls.
//
// # Description
//
// singleflight registers the flight before any caller can block, which closes
// the check-then-act window between "no in-flight entry" and "computation
// started". The in-flight entry is removed when the computation settles,
// success or failure alike, so a request arriving after a failure starts
// fresh rather than replaying a cached error.
//
// A waiter whose context expires detaches and reports the context error; the
// computation itself keeps running and its result is delivered to the
// remaining waiters (or discarded if there are none). Callers must therefore
// pass fn a lifetime independent of any single waiter.
//
// # Thread Safety
//
// Safe for concurrent use.
type Coalescer struct {
	group singleflight.Group
}

// NewCoalescer creates an empty Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{}
}

// Do returns the result of fn for key, starting fn only if no flight for key
// exists. shared is true when the result was delivered to more than one
// caller. When ctx expires first, Do returns ctx.Err() and the flight
// continues in the background.
func (co *Coalescer) Do(ctx context.Context, key string, fn func() (any, error)) (value any, shared bool, err error) {
	ch := co.group.DoChan(key, fn)
	select {
	case res := <-ch:
		return res.Val, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
