// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/asap007/ExpenseTracker/services/insight"
	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

var tracer = otel.Tracer("expensetracker.tracker.analytics")

// ErrInvalidAmount is returned when a submitted income is not a positive number.
var ErrInvalidAmount = errors.New("monthly income must be a positive number")

// ErrInvalidGoal is returned when a savings goal amount or timeframe is not positive.
var ErrInvalidGoal = errors.New("goal amount and timeframe must be positive numbers")

// FinancialData is the read/write boundary to the persistence collaborator.
type FinancialData interface {
	// LatestIncome returns the most recent declared income, or nil when the
	// user has never declared one.
	LatestIncome(ctx context.Context, userID string) (*datatypes.IncomeRecord, error)

	// ExpensesSince lists the user's expenses recorded on or after since.
	ExpensesSince(ctx context.Context, userID string, since time.Time) ([]datatypes.Expense, error)

	// RecordIncome persists a new income fact for the user.
	RecordIncome(ctx context.Context, userID string, amount float64) error
}

// Config carries the orchestrator's tunables. Zero values are replaced by
// DefaultConfig equivalents in NewService.
type Config struct {
	// InsightsTTL is the expiration window for analytics results.
	InsightsTTL time.Duration

	// PlanTTL is the expiration window for goal-plan results.
	PlanTTL time.Duration

	// ComputeTimeout bounds a full read-path computation.
	ComputeTimeout time.Duration

	// RefreshTimeout bounds the eager recomputation after an income update.
	RefreshTimeout time.Duration

	// ExpenseWindow is how far back expenses are aggregated for a summary.
	ExpenseWindow time.Duration

	// Retry bounds each insight-generator call.
	Retry RetryConfig
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		InsightsTTL:    60 * time.Minute,
		PlanTTL:        30 * time.Minute,
		ComputeTimeout: 60 * time.Second,
		RefreshTimeout: 15 * time.Second,
		ExpenseWindow:  30 * 24 * time.Hour,
		Retry:          DefaultRetryConfig(),
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.InsightsTTL <= 0 {
		c.InsightsTTL = def.InsightsTTL
	}
	if c.PlanTTL <= 0 {
		c.PlanTTL = def.PlanTTL
	}
	if c.ComputeTimeout <= 0 {
		c.ComputeTimeout = def.ComputeTimeout
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = def.RefreshTimeout
	}
	if c.ExpenseWindow <= 0 {
		c.ExpenseWindow = def.ExpenseWindow
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry = def.Retry
	}
}

// Service is the analytics orchestrator: cache check, in-flight attach,
// compute with retry, cache write, and fallback synthesis.
//
// The cache and in-flight map are the only shared mutable state here; both
// are keyed by the same derivation so invalidation and coalescing agree. A
// read that began before an invalidation may still repopulate the cache with
// pre-invalidation data afterwards; that staleness window is accepted and
// bounded by the expiration policy.
type Service struct {
	data   FinancialData
	model  insight.Client
	cache  *ResultCache
	flight *Coalescer
	cfg    Config
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithResultCache replaces the service's cache, usually to inject a test
// clock via NewResultCache(WithClock(...)).
func WithResultCache(cache *ResultCache) ServiceOption {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
		}
	}
}

// NewService wires the orchestrator with its collaborators.
func NewService(data FinancialData, model insight.Client, cfg Config, opts ...ServiceOption) *Service {
	cfg.applyDefaults()
	s := &Service{
		data:   data,
		model:  model,
		cache:  NewResultCache(),
		flight: NewCoalescer(),
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func insightsKey(userID string) string {
	return "analytics:" + userID
}

func planKey(userID string, goal datatypes.SavingsGoal) string {
	return fmt.Sprintf("goal:%s:%.2f:%d", userID, goal.Amount, goal.Timeframe)
}

// Insights serves the analytics read path for one user.
//
// Order: fresh cache hit, then attach to an in-flight computation, then
// compute (summary fetch, retry-wrapped insight call, cache write). On total
// failure it degrades to the stale cache entry if one exists, else to a
// deterministic heuristic; an error escapes only when not even the financial
// totals can be read.
func (s *Service) Insights(ctx context.Context, userID string) (*datatypes.AnalyticsResponse, error) {
	ctx, span := tracer.Start(ctx, "analytics.Insights")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	key := insightsKey(userID)
	if entry, ok := s.cache.Get(key); ok && s.cache.Fresh(entry, s.cfg.InsightsTTL) {
		if cached, ok := entry.Value.(*datatypes.AnalyticsResponse); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
		// Should not occur: the only writer stores *AnalyticsResponse.
		slog.Error("Cached analytics entry has an unexpected type; recomputing", "key", key)
		s.cache.Invalidate(key)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.ComputeTimeout)
	defer cancel()

	// The flight outlives any single waiter so late attachers still get a
	// result; context.WithoutCancel keeps trace propagation intact.
	flightCtx := context.WithoutCancel(ctx)
	value, shared, err := s.flight.Do(waitCtx, key, func() (any, error) {
		cctx, ccancel := context.WithTimeout(flightCtx, s.cfg.ComputeTimeout)
		defer ccancel()
		return s.computeInsights(cctx, userID)
	})
	if err == nil {
		span.SetAttributes(attribute.Bool("coalesced", shared))
		return value.(*datatypes.AnalyticsResponse), nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("fallback", trace.WithAttributes(attribute.String("key", key)))
	return s.fallbackInsights(ctx, userID, err)
}

// computeInsights runs one fresh computation and stores it on success. The
// response is cached even when the user has no income yet; the income write
// path invalidates it.
func (s *Service) computeInsights(ctx context.Context, userID string) (*datatypes.AnalyticsResponse, error) {
	ctx, span := tracer.Start(ctx, "analytics.computeInsights")
	defer span.End()

	resp, summary, err := s.loadFinancials(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if resp.HasIncome {
		value, err := Retry(ctx, s.cfg.Retry, func(ctx context.Context) (any, error) {
			return s.model.GenerateInsights(ctx, summary)
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		resp.AIInsights = value.(*datatypes.AIInsights)
	}

	s.cache.Put(insightsKey(userID), resp)
	return resp, nil
}

// loadFinancials fetches collaborator data and builds the response skeleton
// plus the summary handed to the insight generator.
func (s *Service) loadFinancials(ctx context.Context, userID string) (*datatypes.AnalyticsResponse, datatypes.FinancialSummary, error) {
	income, err := s.data.LatestIncome(ctx, userID)
	if err != nil {
		return nil, datatypes.FinancialSummary{}, fmt.Errorf("loading income: %w", err)
	}
	expenses, err := s.data.ExpensesSince(ctx, userID, time.Now().Add(-s.cfg.ExpenseWindow))
	if err != nil {
		return nil, datatypes.FinancialSummary{}, fmt.Errorf("loading expenses: %w", err)
	}

	summary := Summarize(income, expenses)
	resp := &datatypes.AnalyticsResponse{
		CurrentIncome:      summary.MonthlyIncome,
		TotalExpenses:      summary.TotalExpenses,
		ExpensesByCategory: categoryBreakdown(summary),
		HasIncome:          income != nil,
	}
	return resp, summary, nil
}

// fallbackInsights degrades a failed computation: stale cache if available,
// else a heuristic built from the financial totals alone.
func (s *Service) fallbackInsights(ctx context.Context, userID string, cause error) (*datatypes.AnalyticsResponse, error) {
	if entry, ok := s.cache.Get(insightsKey(userID)); ok {
		if cached, ok := entry.Value.(*datatypes.AnalyticsResponse); ok {
			slog.Warn("Serving stale analytics after computation failure",
				"user_id", userID, "stored_at", entry.StoredAt, "error", cause)
			out := *cached
			out.Warning = "insights may be out of date; showing the last computed result"
			return &out, nil
		}
	}

	resp, summary, err := s.loadFinancials(ctx, userID)
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	if resp.HasIncome {
		resp.AIInsights = HeuristicInsights(summary)
	}
	resp.Warning = "AI insights are temporarily unavailable; showing a standard 50/30/20 guideline"
	slog.Warn("Serving heuristic analytics after computation failure", "user_id", userID, "error", cause)
	return resp, nil
}

// UpdateIncome persists a new income fact, invalidates the user's analytics
// entry, and eagerly recomputes under RefreshTimeout. The write is reported
// successful even when the refresh fails; the next read recomputes normally.
func (s *Service) UpdateIncome(ctx context.Context, userID string, amount float64) (*datatypes.UpdateIncomeResponse, error) {
	ctx, span := tracer.Start(ctx, "analytics.UpdateIncome")
	defer span.End()

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.data.RecordIncome(ctx, userID, amount); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("recording income: %w", err)
	}
	s.cache.Invalidate(insightsKey(userID))

	refreshCtx, cancel := context.WithTimeout(ctx, s.cfg.RefreshTimeout)
	defer cancel()
	analytics, err := s.Insights(refreshCtx, userID)
	if err != nil {
		slog.Warn("Eager analytics refresh failed after income update", "user_id", userID, "error", err)
		return &datatypes.UpdateIncomeResponse{
			Success: true,
			Warning: "income saved; analytics will refresh on the next read",
		}, nil
	}
	return &datatypes.UpdateIncomeResponse{
		Success:   true,
		Analytics: analytics,
		Warning:   analytics.Warning,
	}, nil
}

// SavingsPlan serves the goal-planning read path. Same order and degradation
// policy as Insights, with the deterministic divide-the-goal plan as the
// final fallback.
func (s *Service) SavingsPlan(ctx context.Context, userID string, goal datatypes.SavingsGoal) (*datatypes.SavingsPlan, error) {
	ctx, span := tracer.Start(ctx, "analytics.SavingsPlan")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Float64("goal_amount", goal.Amount),
		attribute.Int("goal_timeframe", goal.Timeframe),
	)

	if goal.Amount <= 0 || goal.Timeframe <= 0 {
		return nil, ErrInvalidGoal
	}

	key := planKey(userID, goal)
	if entry, ok := s.cache.Get(key); ok && s.cache.Fresh(entry, s.cfg.PlanTTL) {
		if cached, ok := entry.Value.(*datatypes.SavingsPlan); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
		slog.Error("Cached plan entry has an unexpected type; recomputing", "key", key)
		s.cache.Invalidate(key)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.ComputeTimeout)
	defer cancel()

	flightCtx := context.WithoutCancel(ctx)
	value, shared, err := s.flight.Do(waitCtx, key, func() (any, error) {
		cctx, ccancel := context.WithTimeout(flightCtx, s.cfg.ComputeTimeout)
		defer ccancel()
		return s.computePlan(cctx, userID, goal)
	})
	if err == nil {
		span.SetAttributes(attribute.Bool("coalesced", shared))
		return value.(*datatypes.SavingsPlan), nil
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("fallback", trace.WithAttributes(attribute.String("key", key)))

	if entry, ok := s.cache.Get(key); ok {
		if cached, ok := entry.Value.(*datatypes.SavingsPlan); ok {
			slog.Warn("Serving stale savings plan after computation failure",
				"user_id", userID, "stored_at", entry.StoredAt, "error", err)
			out := *cached
			out.Warning = "plan may be out of date; showing the last computed result"
			return &out, nil
		}
	}
	slog.Warn("Serving heuristic savings plan after computation failure", "user_id", userID, "error", err)
	plan := HeuristicPlan(goal)
	plan.Warning = "AI planning is temporarily unavailable; showing an even monthly split"
	return plan, nil
}

func (s *Service) computePlan(ctx context.Context, userID string, goal datatypes.SavingsGoal) (*datatypes.SavingsPlan, error) {
	ctx, span := tracer.Start(ctx, "analytics.computePlan")
	defer span.End()

	_, summary, err := s.loadFinancials(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	value, err := Retry(ctx, s.cfg.Retry, func(ctx context.Context) (any, error) {
		return s.model.GenerateSavingsPlan(ctx, summary, goal)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	plan := value.(*datatypes.SavingsPlan)
	s.cache.Put(planKey(userID, goal), plan)
	return plan, nil
}
