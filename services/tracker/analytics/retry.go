// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/asap007/ExpenseTracker/services/insight"
)

// jitterSpread is the total jitter amplitude relative to the computed delay.
// Delays are perturbed uniformly within ±15% when jitter is enabled.
const jitterSpread = 0.30

// RetryConfig bounds the retry loop around one insight-generator call.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// BackoffFactor multiplies the delay after every failed attempt.
	BackoffFactor float64

	// JitterEnabled perturbs each delay by ±15% to avoid retry storms.
	JitterEnabled bool
}

// DefaultRetryConfig matches the production defaults for insight calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		BaseDelay:     500 * time.Millisecond,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// delayFor computes the backoff delay before retry number n (n >= 1):
// BaseDelay * BackoffFactor^(n-1), optionally jittered.
func (cfg RetryConfig) delayFor(n int) time.Duration {
	factor := cfg.BackoffFactor
	if factor <= 0 {
		factor = 1
	}
	delay := float64(cfg.BaseDelay) * math.Pow(factor, float64(n-1))
	if cfg.JitterEnabled {
		delay *= 1 - jitterSpread/2 + rand.Float64()*jitterSpread
	}
	return time.Duration(delay)
}

// retryable classifies err. Errors carrying a client-side status in
// [400,500) other than 408 and 429 are permanent and must not be retried;
// everything else (network failures, 5xx, 408, 429, malformed or
// missing-field model output) signals transient misbehavior.
func retryable(err error) bool {
	code, ok := insight.StatusOf(err)
	if !ok {
		return true
	}
	if code >= 400 && code < 500 && code != 408 && code != 429 {
		return false
	}
	return true
}

// Retry executes op up to cfg.MaxAttempts times with exponential backoff.
//
// Permanent errors propagate immediately. After exhausting all attempts the
// last error is returned. Backoff sleeps respect ctx; op itself must perform
// exactly one attempt at calling and validating the insight generator.
func Retry(ctx context.Context, cfg RetryConfig, op func(context.Context) (any, error)) (any, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := cfg.delayFor(attempt - 1)
			slog.Warn("Retrying insight computation",
				"attempt", attempt,
				"max_attempts", attempts,
				"delay", delay,
				"error", lastErr,
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if !retryable(err) {
			slog.Warn("Insight computation failed with a permanent error", "error", err)
			return nil, err
		}
	}
	return nil, lastErr
}
