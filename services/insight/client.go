// Package insight defines the boundary to the generative model that turns a
// financial summary into budget analysis and savings plans.
package insight

import (
	"context"

	"github.com/asap007/ExpenseTracker/services/tracker/datatypes"
)

// Client is the standard interface for any insight backend. Implementations
// perform exactly one attempt per call; retry policy belongs to the caller.
type Client interface {
	GenerateInsights(ctx context.Context, summary datatypes.FinancialSummary) (*datatypes.AIInsights, error)
	GenerateSavingsPlan(ctx context.Context, summary datatypes.FinancialSummary, goal datatypes.SavingsGoal) (*datatypes.SavingsPlan, error)
}
