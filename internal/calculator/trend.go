package calculator

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abira1/Academy-Management-System/internal/models"
)

// IncomePolicy decides how student income, which carries no payment dates,
// is placed into monthly buckets. The chosen policy is echoed in every Trend
// so callers can label the figures.
type IncomePolicy int

const (
	// IncomeUnattributed leaves income out of the buckets and reports it in
	// Trend.UnbucketedIncome. Bucket profit is then expense-only.
	IncomeUnattributed IncomePolicy = iota

	// IncomeReferenceMonth puts all income in the reference instant's month.
	IncomeReferenceMonth

	// IncomeSpreadElapsed spreads income evenly over the months elapsed in
	// the reference year, including the reference month.
	IncomeSpreadElapsed
)

var policyNames = map[IncomePolicy]string{
	IncomeUnattributed:   "unattributed",
	IncomeReferenceMonth: "reference-month",
	IncomeSpreadElapsed:  "spread-elapsed",
}

func (p IncomePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("IncomePolicy(%d)", int(p))
}

// ParseIncomePolicy maps a policy name back to its value.
func ParseIncomePolicy(s string) (IncomePolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IncomeUnattributed, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown income policy %q", s)
}

// MonthFigures is one calendar month of a trend.
type MonthFigures struct {
	Month   time.Month
	Income  float64
	Expense float64
	Profit  float64
}

// SkippedRecord is a record left out of monthly bucketing because its date
// could not be parsed. Its amount still counts in every total.
type SkippedRecord struct {
	Collection string
	ID         string
	Date       string
	Amount     float64
	Reason     string
}

// Trend is a twelve-month income/expense/profit series for one year.
type Trend struct {
	Year   int
	Policy IncomePolicy

	// Months holds January through December, in order.
	Months []MonthFigures

	// UnbucketedIncome is the income not placed in any month. It equals
	// total income under IncomeUnattributed and zero otherwise.
	UnbucketedIncome float64

	// Skipped lists records with malformed dates.
	Skipped []SkippedRecord
}

// MonthlyTrend buckets salaries and expenses of ref's year by their own
// dates, places income according to policy, and computes each month's
// profit. Records dated in other years are not bucketed.
func MonthlyTrend(students []models.Student, teachers []models.Teacher, expenses []models.Expense, ref time.Time, policy IncomePolicy) Trend {
	trend := Trend{
		Year:   ref.Year(),
		Policy: policy,
		Months: make([]MonthFigures, 12),
	}
	for i := range trend.Months {
		trend.Months[i].Month = time.Month(i + 1)
	}

	for _, e := range expenses {
		trend.bucket("expenses", e.ID, e.Date, e.Cost)
	}
	for _, t := range teachers {
		trend.bucket("teachers", t.ID, t.Date, t.Salary)
	}

	income := TotalIncome(students)
	switch policy {
	case IncomeReferenceMonth:
		trend.Months[ref.Month()-1].Income += income
	case IncomeSpreadElapsed:
		elapsed := ElapsedMonths(ref)
		per := income / float64(elapsed)
		for i := 0; i < elapsed; i++ {
			trend.Months[i].Income += per
		}
	default:
		trend.Policy = IncomeUnattributed
		trend.UnbucketedIncome = income
	}

	for i := range trend.Months {
		m := &trend.Months[i]
		m.Profit = m.Income - m.Expense
	}

	sort.SliceStable(trend.Skipped, func(i, j int) bool {
		if trend.Skipped[i].Collection != trend.Skipped[j].Collection {
			return trend.Skipped[i].Collection < trend.Skipped[j].Collection
		}
		return trend.Skipped[i].ID < trend.Skipped[j].ID
	})
	return trend
}

func (t *Trend) bucket(collection, id, date string, amount float64) {
	d, err := models.ParseDate(date)
	if err != nil {
		t.Skipped = append(t.Skipped, SkippedRecord{
			Collection: collection,
			ID:         id,
			Date:       date,
			Amount:     amount,
			Reason:     err.Error(),
		})
		return
	}
	if d.Year() != t.Year {
		return
	}
	t.Months[d.Month()-1].Expense += amount
}

// TotalProfit sums the profit column. Under IncomeUnattributed it excludes
// income; add UnbucketedIncome to reconcile with NetProfit for a single year.
func (t Trend) TotalProfit() float64 {
	var total float64
	for _, m := range t.Months {
		total += m.Profit
	}
	return total
}
