package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/abira1/Academy-Management-System/internal/models"
)

func TestPartnerShare(t *testing.T) {
	partners := []models.Partner{
		{ID: "p1", Username: "PARTNER ONE", SharePercentage: 25},
		{ID: "p2", Username: "partner two", SharePercentage: 50},
	}

	tests := []struct {
		name        string
		partnerID   string
		netProfit   float64
		elapsed     int
		wantMonthly float64
		wantYearly  float64
		wantZero    bool
	}{
		{
			name:        "quarter share",
			partnerID:   "p1",
			netProfit:   10000,
			elapsed:     5,
			wantMonthly: 500,
			wantYearly:  2500,
		},
		{
			name:        "half share scales linearly",
			partnerID:   "p2",
			netProfit:   10000,
			elapsed:     5,
			wantMonthly: 1000,
			wantYearly:  5000,
		},
		{
			name:        "loss is shared too",
			partnerID:   "p1",
			netProfit:   -4000,
			elapsed:     2,
			wantMonthly: -500,
			wantYearly:  -1000,
		},
		{
			name:      "unknown partner",
			partnerID: "missing",
			netProfit: 10000,
			elapsed:   5,
			wantZero:  true,
		},
		{
			name:      "no elapsed months",
			partnerID: "p1",
			netProfit: 10000,
			elapsed:   0,
			wantZero:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PartnerShare(partners, tt.partnerID, tt.netProfit, tt.elapsed)
			if tt.wantZero {
				if got != (Share{}) {
					t.Errorf("PartnerShare() = %+v, want zero value", got)
				}
				return
			}
			if !got.Estimate {
				t.Error("computed share should be flagged as an estimate")
			}
			if math.Abs(got.MonthlyProfit-tt.wantMonthly) > 0.01 {
				t.Errorf("MonthlyProfit = %v, want %v", got.MonthlyProfit, tt.wantMonthly)
			}
			if math.Abs(got.YearlyIncome-tt.wantYearly) > 0.01 {
				t.Errorf("YearlyIncome = %v, want %v", got.YearlyIncome, tt.wantYearly)
			}
		})
	}
}

func TestElapsedMonths(t *testing.T) {
	tests := []struct {
		ref  time.Time
		want int
	}{
		{ref: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), want: 1},
		{ref: time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC), want: 5},
		{ref: time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), want: 12},
	}
	for _, tt := range tests {
		if got := ElapsedMonths(tt.ref); got != tt.want {
			t.Errorf("ElapsedMonths(%v) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	l := Ledger{
		Students: []models.Student{{Paid: 15000, TotalPayment: 20000}, {Paid: 15000, TotalPayment: 15000}},
		Teachers: []models.Teacher{{Salary: 30000, Date: "2023-10-01"}},
		Expenses: []models.Expense{{Cost: 15000, Date: "2023-10-05"}, {Cost: 3500, Date: "2023-10-07"}},
		Partners: []models.Partner{{SharePercentage: 25}, {SharePercentage: 90}},
	}

	s := Summarize(l, october2023, IncomeReferenceMonth)

	if s.StudentCount != 2 {
		t.Errorf("StudentCount = %d, want 2", s.StudentCount)
	}
	if math.Abs(s.NetProfit-(-18500)) > 0.01 {
		t.Errorf("NetProfit = %v, want -18500", s.NetProfit)
	}
	if math.Abs(s.TotalDue-5000) > 0.01 {
		t.Errorf("TotalDue = %v, want 5000", s.TotalDue)
	}
	if math.Abs(s.AllocatedShare-115) > 0.01 {
		t.Errorf("AllocatedShare = %v, want 115", s.AllocatedShare)
	}
	if math.Abs(s.Trend.TotalProfit()-s.NetProfit) > 0.01 {
		t.Errorf("trend profit %v does not reconcile with net profit %v", s.Trend.TotalProfit(), s.NetProfit)
	}
}
