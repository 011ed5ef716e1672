// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/asap007/ExpenseTracker/services/tracker/analytics"
	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
	"github.com/asap007/ExpenseTracker/services/tracker/middleware"
)

// PlanSavingsGoal serves POST /v1/goals/plan. Both inputs are validated
// before any computation; on total computation failure the orchestrator
// already substituted a deterministic plan, so this handler never returns a
// 500 for model unavailability.
func PlanSavingsGoal(svc AnalyticsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "PlanSavingsGoal")
		defer span.End()

		var req datatypes.GoalPlanRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "goalAmount and timeframe must be positive numbers"})
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "goalAmount must be in whole cents and timeframe at most 600 months"})
			return
		}

		userID := middleware.GetUserID(c)
		plan, err := svc.SavingsPlan(ctx, userID, datatypes.SavingsGoal{
			Amount:    req.GoalAmount,
			Timeframe: req.Timeframe,
		})
		if err != nil {
			if errors.Is(err, analytics.ErrInvalidGoal) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Savings plan computation failed", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "planning is unavailable right now"})
			return
		}
		c.JSON(http.StatusOK, plan)
	}
}
