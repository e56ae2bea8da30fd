// Package calculator derives the academy's money figures from the current
// record snapshots. Every function is pure: results depend only on the
// arguments, and the reference instant is always passed in explicitly.
// Missing or empty inputs yield zero figures, never an error.
package calculator

import "github.com/abira1/Academy-Management-System/internal/models"

// Ledger is one read of all four collections.
type Ledger struct {
	Students []models.Student
	Teachers []models.Teacher
	Expenses []models.Expense
	Partners []models.Partner
}

// Due is the single formula for a student's outstanding balance.
func Due(totalPayment, paid float64) float64 {
	return totalPayment - paid
}

// TotalIncome sums what students have paid.
func TotalIncome(students []models.Student) float64 {
	var total float64
	for _, s := range students {
		total += s.Paid
	}
	return total
}

// TotalDue sums outstanding balances, recomputed from each student's
// totals rather than read from the stored due field.
func TotalDue(students []models.Student) float64 {
	var total float64
	for _, s := range students {
		total += Due(s.TotalPayment, s.Paid)
	}
	return total
}

// TotalSalaries sums teacher salary disbursements.
func TotalSalaries(teachers []models.Teacher) float64 {
	var total float64
	for _, t := range teachers {
		total += t.Salary
	}
	return total
}

// TotalOtherExpenses sums non-salary expenses.
func TotalOtherExpenses(expenses []models.Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Cost
	}
	return total
}

// TotalExpenses sums both expense sources: salaries and other expenses.
func TotalExpenses(teachers []models.Teacher, expenses []models.Expense) float64 {
	return TotalSalaries(teachers) + TotalOtherExpenses(expenses)
}

// NetProfit is income minus expenses. A negative result is a loss and is
// returned as is.
func NetProfit(students []models.Student, teachers []models.Teacher, expenses []models.Expense) float64 {
	return TotalIncome(students) - TotalExpenses(teachers, expenses)
}
