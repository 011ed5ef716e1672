package insight

import (
	"encoding/json"
	"fmt"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

const systemPrompt = "You are a personal finance advisor. Answer with a single JSON object and nothing else."

func insightsPrompt(summary datatypes.FinancialSummary) string {
	data, _ := json.Marshal(summary)
	return fmt.Sprintf(`Analyze this monthly financial snapshot and respond with a JSON object
containing exactly these fields:
  "analysis": one paragraph of plain-language analysis,
  "recommendations": array of short actionable strings,
  "concerns": array of short strings (empty array if none),
  "suggestedBudget": {"needs": number, "wants": number, "savings": number} in the same currency.

Snapshot: %s`, data)
}

func savingsPlanPrompt(summary datatypes.FinancialSummary, goal datatypes.SavingsGoal) string {
	data, _ := json.Marshal(summary)
	return fmt.Sprintf(`The user wants to save %.2f over %d months. Given this monthly snapshot,
respond with a JSON object containing exactly these fields:
  "savingsPlan": one paragraph describing how to reach the goal,
  "recommendations": array of short actionable strings,
  "tips": array of short strings.

Snapshot: %s`, goal.Amount, goal.Timeframe, data)
}
