// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"fmt"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

// HeuristicInsights builds a deterministic, locally computed substitute for a
// model-generated analysis: a 50/30/20 split of income plus generic advice.
// It satisfies the same required-shape contract as a real insight payload.
func HeuristicInsights(summary datatypes.FinancialSummary) *datatypes.AIInsights {
	income := summary.MonthlyIncome
	spentRatio := 0.0
	if income > 0 {
		spentRatio = summary.TotalExpenses / income
	}

	analysis := fmt.Sprintf(
		"You earn %.2f per month and spent %.2f recently (%.0f%% of income). "+
			"A 50/30/20 split is a solid baseline: half for needs, 30%% for wants, and 20%% saved.",
		income, summary.TotalExpenses, spentRatio*100,
	)

	recommendations := []string{
		"Track every expense against a category so overspending shows up early.",
		"Review subscriptions and recurring charges once a month.",
		"Automate a transfer to savings on payday before discretionary spending.",
	}

	concerns := []string{}
	if income > 0 && summary.TotalExpenses > income {
		concerns = append(concerns, "Your recent expenses exceed your monthly income.")
	}

	return &datatypes.AIInsights{
		Analysis:        analysis,
		Recommendations: recommendations,
		Concerns:        concerns,
		SuggestedBudget: datatypes.SuggestedBudget{
			Needs:   income * 0.5,
			Wants:   income * 0.3,
			Savings: income * 0.2,
		},
	}
}

// HeuristicPlan builds a deterministic savings plan: the goal amount divided
// evenly across the timeframe.
func HeuristicPlan(goal datatypes.SavingsGoal) *datatypes.SavingsPlan {
	monthly := goal.Amount / float64(goal.Timeframe)
	return &datatypes.SavingsPlan{
		SavingsPlan: fmt.Sprintf(
			"To reach %.2f in %d months, set aside $%.2f per month. "+
				"Treat it as a fixed bill and move it to savings as soon as income arrives.",
			goal.Amount, goal.Timeframe, monthly,
		),
		Recommendations: []string{
			fmt.Sprintf("Automate a monthly transfer of $%.2f into a separate savings account.", monthly),
			"Cut one discretionary category and redirect the difference to the goal.",
		},
		Tips: []string{
			"Keep the goal account out of your daily banking app to reduce temptation.",
			"Revisit the plan whenever your income changes.",
		},
	}
}
