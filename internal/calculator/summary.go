package calculator

import "time"

// Summary is the admin overview: headline totals plus the monthly trend.
type Summary struct {
	StudentCount       int
	TotalIncome        float64
	TotalDue           float64
	TotalSalaries      float64
	TotalOtherExpenses float64
	TotalExpenses      float64
	NetProfit          float64
	AllocatedShare     float64
	Trend              Trend
}

// Summarize folds a ledger into a Summary as of ref.
func Summarize(l Ledger, ref time.Time, policy IncomePolicy) Summary {
	return Summary{
		StudentCount:       len(l.Students),
		TotalIncome:        TotalIncome(l.Students),
		TotalDue:           TotalDue(l.Students),
		TotalSalaries:      TotalSalaries(l.Teachers),
		TotalOtherExpenses: TotalOtherExpenses(l.Expenses),
		TotalExpenses:      TotalExpenses(l.Teachers, l.Expenses),
		NetProfit:          NetProfit(l.Students, l.Teachers, l.Expenses),
		AllocatedShare:     AllocatedShare(l.Partners),
		Trend:              MonthlyTrend(l.Students, l.Teachers, l.Expenses, ref, policy),
	}
}
