// Package export turns ledger records and figures into printable tables.
// Amounts are rendered in Bangladeshi taka with thousands separators.
package export

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abira1/Academy-Management-System/internal/calculator"
	"github.com/abira1/Academy-Management-System/internal/models"
)

// Table is a titled grid of pre-formatted cells.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

var printer = message.NewPrinter(language.English)

// Currency formats an amount as taka, e.g. ৳1,234.50. Losses keep a
// leading minus sign.
func Currency(v float64) string {
	if v < 0 && math.Abs(v) >= 0.005 {
		return "-" + printer.Sprintf("৳%.2f", -v)
	}
	return printer.Sprintf("৳%.2f", math.Abs(v))
}

// Percent formats a share percentage.
func Percent(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}

// StudentTable lists students with their payment position. Due is
// recomputed from the totals.
func StudentTable(students []models.Student) Table {
	t := Table{
		Title:   "Student Report",
		Columns: []string{"ID", "Name", "Phone", "Course", "Total", "Paid", "Due"},
		Rows:    make([][]string, 0, len(students)),
	}
	for _, s := range students {
		t.Rows = append(t.Rows, []string{
			s.StudentID,
			s.Name,
			s.Phone,
			s.Course,
			Currency(s.TotalPayment),
			Currency(s.Paid),
			Currency(calculator.Due(s.TotalPayment, s.Paid)),
		})
	}
	return t
}

// TeacherTable lists salary disbursements.
func TeacherTable(teachers []models.Teacher) Table {
	t := Table{
		Title:   "Teacher Salaries",
		Columns: []string{"Name", "Salary", "Date"},
		Rows:    make([][]string, 0, len(teachers)),
	}
	for _, tc := range teachers {
		t.Rows = append(t.Rows, []string{tc.Name, Currency(tc.Salary), tc.Date})
	}
	return t
}

// ExpenseTable lists non-salary expenses.
func ExpenseTable(expenses []models.Expense) Table {
	t := Table{
		Title:   "Expenses",
		Columns: []string{"Item", "Cost", "Date", "Description"},
		Rows:    make([][]string, 0, len(expenses)),
	}
	for _, e := range expenses {
		t.Rows = append(t.Rows, []string{e.Item, Currency(e.Cost), e.Date, e.Description})
	}
	return t
}

// PartnerStatement is a partner's financial statement.
func PartnerStatement(share calculator.Share) Table {
	return Table{
		Title:   fmt.Sprintf("Financial Statement: %s", share.Username),
		Columns: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Share Percentage", Percent(share.SharePercentage)},
			{"This Month's Profit (Est.)", Currency(share.MonthlyProfit)},
			{"Total Yearly Income (Est.)", Currency(share.YearlyIncome)},
		},
	}
}

// TrendTable lists the twelve months of a trend, with a totals row.
func TrendTable(trend calculator.Trend) Table {
	t := Table{
		Title:   fmt.Sprintf("Monthly Trend %d (income: %s)", trend.Year, trend.Policy),
		Columns: []string{"Month", "Income", "Expense", "Profit"},
		Rows:    make([][]string, 0, len(trend.Months)+1),
	}
	var income, expense float64
	for _, m := range trend.Months {
		income += m.Income
		expense += m.Expense
		t.Rows = append(t.Rows, []string{
			m.Month.String()[:3],
			Currency(m.Income),
			Currency(m.Expense),
			Currency(m.Profit),
		})
	}
	t.Rows = append(t.Rows, []string{"Total", Currency(income), Currency(expense), Currency(income - expense)})
	return t
}

// SummaryTable is the admin overview as a Metric/Value table.
func SummaryTable(s calculator.Summary) Table {
	return Table{
		Title:   "Financial Summary",
		Columns: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Students", printer.Sprintf("%d", s.StudentCount)},
			{"Total Income", Currency(s.TotalIncome)},
			{"Outstanding Dues", Currency(s.TotalDue)},
			{"Teacher Salaries", Currency(s.TotalSalaries)},
			{"Other Expenses", Currency(s.TotalOtherExpenses)},
			{"Total Expenses", Currency(s.TotalExpenses)},
			{"Net Profit", Currency(s.NetProfit)},
			{"Allocated Partner Share", Percent(s.AllocatedShare)},
		},
	}
}
