package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/abira1/Academy-Management-System/internal/models"
)

var october2023 = time.Date(2023, time.October, 20, 12, 0, 0, 0, time.UTC)

func TestMonthlyTrend(t *testing.T) {
	students := []models.Student{{Paid: 15000}, {Paid: 15000}}
	teachers := []models.Teacher{
		{ID: "t1", Salary: 30000, Date: "2023-10-01"},
		{ID: "t2", Salary: 1000, Date: "2022-10-01"},
	}
	expenses := []models.Expense{
		{ID: "e1", Cost: 15000, Date: "2023-10-05"},
		{ID: "e2", Cost: 3500, Date: "2023-09-07"},
		{ID: "e3", Cost: 700, Date: "not a date"},
	}

	tests := []struct {
		name           string
		policy         IncomePolicy
		wantIncome     map[time.Month]float64
		wantUnbucketed float64
	}{
		{
			name:           "unattributed income",
			policy:         IncomeUnattributed,
			wantIncome:     map[time.Month]float64{},
			wantUnbucketed: 30000,
		},
		{
			name:       "income in reference month",
			policy:     IncomeReferenceMonth,
			wantIncome: map[time.Month]float64{time.October: 30000},
		},
		{
			name:   "income spread over elapsed months",
			policy: IncomeSpreadElapsed,
			wantIncome: map[time.Month]float64{
				time.January: 3000, time.February: 3000, time.March: 3000, time.April: 3000,
				time.May: 3000, time.June: 3000, time.July: 3000, time.August: 3000,
				time.September: 3000, time.October: 3000,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := MonthlyTrend(students, teachers, expenses, october2023, tt.policy)

			if trend.Year != 2023 || trend.Policy != tt.policy {
				t.Fatalf("trend header = %d/%v", trend.Year, trend.Policy)
			}
			if len(trend.Months) != 12 {
				t.Fatalf("len(Months) = %d, want 12", len(trend.Months))
			}
			if math.Abs(trend.UnbucketedIncome-tt.wantUnbucketed) > 0.01 {
				t.Errorf("UnbucketedIncome = %v, want %v", trend.UnbucketedIncome, tt.wantUnbucketed)
			}

			for _, m := range trend.Months {
				if math.Abs(m.Income-tt.wantIncome[m.Month]) > 0.01 {
					t.Errorf("%s income = %v, want %v", m.Month, m.Income, tt.wantIncome[m.Month])
				}
				if math.Abs(m.Profit-(m.Income-m.Expense)) > 0.01 {
					t.Errorf("%s profit = %v, want income-expense", m.Month, m.Profit)
				}
			}

			if got := trend.Months[time.October-1].Expense; math.Abs(got-45000) > 0.01 {
				t.Errorf("October expense = %v, want 45000", got)
			}
			if got := trend.Months[time.September-1].Expense; math.Abs(got-3500) > 0.01 {
				t.Errorf("September expense = %v, want 3500", got)
			}
		})
	}
}

func TestMonthlyTrendSkipsMalformedDates(t *testing.T) {
	expenses := []models.Expense{
		{ID: "bad", Cost: 700, Date: "13/40/2023"},
		{ID: "good", Cost: 300, Date: "2023-03-01"},
	}
	teachers := []models.Teacher{{ID: "blank", Salary: 100}}

	trend := MonthlyTrend(nil, teachers, expenses, october2023, IncomeUnattributed)

	if len(trend.Skipped) != 2 {
		t.Fatalf("Skipped = %+v, want 2 records", trend.Skipped)
	}
	if trend.Skipped[0].Collection != "expenses" || trend.Skipped[0].ID != "bad" {
		t.Errorf("Skipped[0] = %+v", trend.Skipped[0])
	}
	if trend.Skipped[1].Collection != "teachers" || trend.Skipped[1].Amount != 100 {
		t.Errorf("Skipped[1] = %+v", trend.Skipped[1])
	}

	var bucketed float64
	for _, m := range trend.Months {
		bucketed += m.Expense
	}
	if math.Abs(bucketed-300) > 0.01 {
		t.Errorf("bucketed expense = %v, want 300", bucketed)
	}

	// The skipped amounts still count in the totals.
	if got := TotalExpenses(teachers, expenses); math.Abs(got-1100) > 0.01 {
		t.Errorf("TotalExpenses() = %v, want 1100", got)
	}
}

func TestMonthlyTrendEmpty(t *testing.T) {
	trend := MonthlyTrend(nil, nil, nil, october2023, IncomeSpreadElapsed)
	for _, m := range trend.Months {
		if m.Income != 0 || m.Expense != 0 || m.Profit != 0 {
			t.Errorf("%s = %+v, want zeros", m.Month, m)
		}
	}
	if trend.TotalProfit() != 0 {
		t.Errorf("TotalProfit() = %v, want 0", trend.TotalProfit())
	}
}

func TestMonthlyTrendUnknownPolicy(t *testing.T) {
	students := []models.Student{{Paid: 15000}}
	trend := MonthlyTrend(students, nil, nil, october2023, IncomePolicy(7))
	if trend.Policy != IncomeUnattributed {
		t.Errorf("Policy = %v, want %v", trend.Policy, IncomeUnattributed)
	}
	if math.Abs(trend.UnbucketedIncome-15000) > 0.01 {
		t.Errorf("UnbucketedIncome = %v, want 15000", trend.UnbucketedIncome)
	}
	for _, m := range trend.Months {
		if m.Income != 0 {
			t.Errorf("%s income = %v, want 0", m.Month, m.Income)
		}
	}
}

func TestParseIncomePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    IncomePolicy
		wantErr bool
	}{
		{in: "", want: IncomeUnattributed},
		{in: "unattributed", want: IncomeUnattributed},
		{in: "Reference-Month", want: IncomeReferenceMonth},
		{in: "spread-elapsed", want: IncomeSpreadElapsed},
		{in: "yearly", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseIncomePolicy(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIncomePolicy(%q) error = %v", tt.in, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseIncomePolicy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
