// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the request/response shapes and derived financial
// aggregates shared by the tracker handlers, the analytics orchestrator, and
// the insight boundary.
package datatypes

import "time"

// IncomeRecord is the latest declared monthly income for a user.
type IncomeRecord struct {
	Amount     float64   `json:"amount"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Expense is a single recorded expense.
type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
}

// FinancialSummary is the non-persisted aggregate handed to the insight
// generator. It is recomputed from collaborator data on every cache-miss
// computation and never cached on its own.
type FinancialSummary struct {
	MonthlyIncome      float64            `json:"monthly_income"`
	TotalExpenses      float64            `json:"total_expenses"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
}

// SavingsGoal is the input to a goal-planning computation.
type SavingsGoal struct {
	Amount    float64 `json:"amount"`
	Timeframe int     `json:"timeframe"` // months
}

// CreateExpenseRequest is the POST /v1/expenses body.
type CreateExpenseRequest struct {
	Amount      float64    `json:"amount" binding:"required,gt=0" validate:"money"`
	Category    string     `json:"category" binding:"required" validate:"max=100"`
	Description string     `json:"description" validate:"max=500"`
	Date        *time.Time `json:"date"`
}

// UpdateIncomeRequest is the POST /v1/analytics body.
type UpdateIncomeRequest struct {
	MonthlyIncome float64 `json:"monthlyIncome" binding:"required,gt=0" validate:"money"`
}

// GoalPlanRequest is the POST /v1/goals/plan body.
type GoalPlanRequest struct {
	GoalAmount float64 `json:"goalAmount" binding:"required,gt=0" validate:"money"`
	Timeframe  int     `json:"timeframe" binding:"required,gt=0" validate:"max=600"`
}
