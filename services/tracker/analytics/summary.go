// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"sort"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

// Summarize aggregates collaborator data into the FinancialSummary handed to
// the insight generator. income may be nil when the user has never declared
// one.
func Summarize(income *datatypes.IncomeRecord, expenses []datatypes.Expense) datatypes.FinancialSummary {
	summary := datatypes.FinancialSummary{
		ExpensesByCategory: make(map[string]float64),
	}
	if income != nil {
		summary.MonthlyIncome = income.Amount
	}
	for _, e := range expenses {
		summary.TotalExpenses += e.Amount
		summary.ExpensesByCategory[e.Category] += e.Amount
	}
	return summary
}

// categoryBreakdown flattens the per-category map into a slice sorted by
// descending amount, then name, for stable JSON output.
func categoryBreakdown(summary datatypes.FinancialSummary) []datatypes.CategoryAmount {
	breakdown := make([]datatypes.CategoryAmount, 0, len(summary.ExpensesByCategory))
	for name, value := range summary.ExpensesByCategory {
		breakdown = append(breakdown, datatypes.CategoryAmount{Name: name, Value: value})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Value != breakdown[j].Value {
			return breakdown[i].Value > breakdown[j].Value
		}
		return breakdown[i].Name < breakdown[j].Name
	})
	return breakdown
}
