package profit

import (
	"github.com/shopspring/decimal"
)

// SoldLine is the slice of a record the dashboard aggregation needs.
// NetProfit is the line's full breakdown profit, fees included.
type SoldLine struct {
	NetProfit decimal.Decimal
	Quantite  int
}

// DashboardSummary aggregates realized profit over sold records and
// tracks progress toward the user's monthly goal.
type DashboardSummary struct {
	SoldCount       int             `json:"soldCount"`
	UnitsSold       int             `json:"unitsSold"`
	TotalProfit     decimal.Decimal `json:"totalProfit"`
	MonthlyGoal     decimal.Decimal `json:"monthlyGoal"`
	GoalProgressPct decimal.Decimal `json:"goalProgressPct"`
}

// Summarize totals the sold lines against the monthly goal. Progress is
// zero when no goal is set and is not capped at 100.
func Summarize(lines []SoldLine, monthlyGoal decimal.Decimal) DashboardSummary {
	summary := DashboardSummary{
		SoldCount:   len(lines),
		TotalProfit: decimal.Zero,
		MonthlyGoal: monthlyGoal,
	}
	for _, line := range lines {
		summary.TotalProfit = summary.TotalProfit.Add(line.NetProfit)
		summary.UnitsSold += line.Quantite
	}
	if monthlyGoal.IsPositive() {
		summary.GoalProgressPct = summary.TotalProfit.Div(monthlyGoal).Mul(hundred)
	} else {
		summary.GoalProgressPct = decimal.Zero
	}
	return summary
}
