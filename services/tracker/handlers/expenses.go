// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
	"github.com/asap007/ExpenseTracker/services/tracker/middleware"
	"github.com/asap007/ExpenseTracker/services/tracker/store"
)

// defaultExpenseLookback bounds unfiltered expense listings.
const defaultExpenseLookback = 90 * 24 * time.Hour

// ExpenseStore is the slice of the persistence layer the expense handlers
// need. Satisfied by *store.Store.
type ExpenseStore interface {
	AddExpense(ctx context.Context, userID string, req datatypes.CreateExpenseRequest) (*datatypes.Expense, error)
	ExpensesSince(ctx context.Context, userID string, since time.Time) ([]datatypes.Expense, error)
	DeleteExpense(ctx context.Context, userID, id string) error
	Categories(ctx context.Context) ([]string, error)
}

// CreateExpense serves POST /v1/expenses.
func CreateExpense(st ExpenseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "CreateExpense")
		defer span.End()

		var req datatypes.CreateExpenseRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive and category is required"})
			return
		}
		if err := req.Validate(); err != nil {
			span.RecordError(err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be in whole cents and fields must fit their size limits"})
			return
		}

		userID := middleware.GetUserID(c)
		expense, err := st.AddExpense(ctx, userID, req)
		if err != nil {
			span.RecordError(err)
			slog.Error("Failed to record expense", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record expense"})
			return
		}
		c.JSON(http.StatusCreated, expense)
	}
}

// ListExpenses serves GET /v1/expenses. An optional `since` query parameter
// (RFC3339) narrows the window; the default covers the last 90 days.
func ListExpenses(st ExpenseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "ListExpenses")
		defer span.End()

		since := time.Now().Add(-defaultExpenseLookback)
		if raw := c.Query("since"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an RFC3339 timestamp"})
				return
			}
			since = parsed
		}

		userID := middleware.GetUserID(c)
		expenses, err := st.ExpensesSince(ctx, userID, since)
		if err != nil {
			span.RecordError(err)
			slog.Error("Failed to list expenses", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list expenses"})
			return
		}
		if expenses == nil {
			expenses = []datatypes.Expense{}
		}
		c.JSON(http.StatusOK, gin.H{"expenses": expenses})
	}
}

// DeleteExpense serves DELETE /v1/expenses/:id.
func DeleteExpense(st ExpenseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "DeleteExpense")
		defer span.End()

		userID := middleware.GetUserID(c)
		err := st.DeleteExpense(ctx, userID, c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "expense not found"})
			return
		}
		if err != nil {
			span.RecordError(err)
			slog.Error("Failed to delete expense", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete expense"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListCategories serves GET /v1/categories.
func ListCategories(st ExpenseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := handlerTracer.Start(c.Request.Context(), "ListCategories")
		defer span.End()

		categories, err := st.Categories(ctx)
		if err != nil {
			span.RecordError(err)
			slog.Error("Failed to list categories", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list categories"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}
