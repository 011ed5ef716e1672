// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"fmt"
)

// SuggestedBudget is a needs/wants/savings split in currency units.
type SuggestedBudget struct {
	Needs   float64 `json:"needs"`
	Wants   float64 `json:"wants"`
	Savings float64 `json:"savings"`
}

// AIInsights is the structured payload produced by the insight generator for
// the analytics endpoint. It is the cached value for analytics keys and must
// pass Validate before being accepted as a successful result.
type AIInsights struct {
	Analysis        string          `json:"analysis"`
	Recommendations []string        `json:"recommendations"`
	Concerns        []string        `json:"concerns"`
	SuggestedBudget SuggestedBudget `json:"suggestedBudget"`
}

// Validate checks the required-shape contract. A failure here is treated the
// same as a failed model call: retryable, then subject to fallback.
func (i *AIInsights) Validate() error {
	if i == nil {
		return errors.New("insights payload is nil")
	}
	if i.Analysis == "" {
		return errors.New("insights missing analysis")
	}
	if i.Recommendations == nil {
		return errors.New("insights missing recommendations")
	}
	if i.Concerns == nil {
		return errors.New("insights missing concerns")
	}
	b := i.SuggestedBudget
	if b.Needs < 0 || b.Wants < 0 || b.Savings < 0 {
		return fmt.Errorf("suggested budget has negative values: %+v", b)
	}
	if b.Needs == 0 && b.Wants == 0 && b.Savings == 0 {
		return errors.New("suggested budget is empty")
	}
	return nil
}

// SavingsPlan is the structured payload produced for the goal endpoint, and
// the cached value for goal keys.
type SavingsPlan struct {
	SavingsPlan     string   `json:"savingsPlan"`
	Recommendations []string `json:"recommendations"`
	Tips            []string `json:"tips"`
	Warning         string   `json:"_warning,omitempty"`
}

// Validate checks the required-shape contract for a savings plan.
func (p *SavingsPlan) Validate() error {
	if p == nil {
		return errors.New("savings plan payload is nil")
	}
	if p.SavingsPlan == "" {
		return errors.New("savings plan missing plan text")
	}
	if p.Recommendations == nil {
		return errors.New("savings plan missing recommendations")
	}
	if p.Tips == nil {
		return errors.New("savings plan missing tips")
	}
	return nil
}

// CategoryAmount is one slice of the expenses-by-category breakdown, ordered
// for stable JSON output.
type CategoryAmount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// AnalyticsResponse is the GET /v1/analytics body. AIInsights is nil when the
// user has no recorded income; Warning is set when the payload is degraded
// (stale cache or heuristic fallback).
type AnalyticsResponse struct {
	CurrentIncome      float64          `json:"currentIncome"`
	TotalExpenses      float64          `json:"totalExpenses"`
	ExpensesByCategory []CategoryAmount `json:"expensesByCategory"`
	AIInsights         *AIInsights      `json:"aiInsights,omitempty"`
	HasIncome          bool             `json:"hasIncome"`
	Warning            string           `json:"_warning,omitempty"`
}

// UpdateIncomeResponse is the POST /v1/analytics body. Success is true as soon
// as the income fact is persisted, even when the eager analytics refresh
// failed; Warning carries the refresh outcome in that case.
type UpdateIncomeResponse struct {
	Success   bool               `json:"success"`
	Analytics *AnalyticsResponse `json:"analytics,omitempty"`
	Warning   string             `json:"_warning,omitempty"`
}
