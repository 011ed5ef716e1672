// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers contains the gin handlers for the tracker service.
// Handlers bind and validate input, delegate to collaborators, and shape the
// response; all external-dependency failures are absorbed inside the
// analytics orchestrator, so only auth and validation produce error statuses
// on the analytics endpoints.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/asap007/ExpenseTracker/services/tracker/analytics"
	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
	"github.com/asap007/ExpenseTracker/services/tracker/middleware"
)

var handlerTracer = otel.Tracer("expensetracker.tracker.handlers")

// AnalyticsProvider is the slice of the analytics orchestrator the handlers
// need. Satisfied by *analytics.Service.
type AnalyticsProvider interface {
	Insights(ctx context.Context, userID string) (*datatypes.AnalyticsResponse, error)
	UpdateIncome(ctx context.Context, userID string, amount float64) (*datatypes.UpdateIncomeResponse, error)
	SavingsPlan(ctx context.Context, userID string, goal datatypes.SavingsGoal) (*datatypes.SavingsPlan, error)
}

// GetAnalytics serves GET /v1/analytics.
func GetAnalytics(svc AnalyticsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "GetAnalytics")
		defer span.End()

		userID := middleware.GetUserID(c)
		resp, err := svc.Insights(ctx, userID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Analytics computation failed with no fallback data", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "analytics are unavailable right now"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// UpdateIncome serves POST /v1/analytics.
func UpdateIncome(svc AnalyticsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "UpdateIncome")
		defer span.End()

		var req datatypes.UpdateIncomeRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "monthlyIncome must be a positive number"})
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "monthlyIncome must be in whole cents"})
			return
		}

		userID := middleware.GetUserID(c)
		resp, err := svc.UpdateIncome(ctx, userID, req.MonthlyIncome)
		if err != nil {
			if errors.Is(err, analytics.ErrInvalidAmount) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Income update failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save income"})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
