// Package seed writes the academy's demo records on first run.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abira1/Academy-Management-System/internal/mirror"
	"github.com/abira1/Academy-Management-System/internal/models"
)

// Demo records written into an empty ledger.
var (
	Students = []models.Student{
		{Name: "Rahim Islam", StudentID: "S-001", Phone: "01712345678", Course: "React Development", TotalPayment: 20000, Paid: 15000},
		{Name: "Karina Ahmed", StudentID: "S-002", Phone: "01812345679", Course: "UI/UX Design", TotalPayment: 15000, Paid: 15000},
	}
	Teachers = []models.Teacher{
		{Name: "Mr. Alamgir", Salary: 30000, Date: "2023-10-01"},
	}
	Expenses = []models.Expense{
		{Item: "Office Rent", Cost: 15000, Date: "2023-10-05", Description: "Monthly rent for office space"},
		{Item: "Utility Bill", Cost: 3500, Date: "2023-10-07", Description: "Electricity and Internet"},
	}
	Partners = []models.Partner{
		{Username: "PARTNER ONE", SharePercentage: 25, Password: "partner123"},
	}
)

// IfEmpty writes the demo records through the mirrors when all four
// collections are empty, and reports whether it did. The mirrors must be
// started so their contents reflect the store.
func IfEmpty(ctx context.Context, set *mirror.Set, logger *slog.Logger) (bool, error) {
	l := set.Ledger()
	if len(l.Students)+len(l.Teachers)+len(l.Expenses)+len(l.Partners) > 0 {
		return false, nil
	}

	logger.Info("ledger is empty, writing demo records")
	for _, s := range Students {
		if _, err := set.Students.Add(ctx, s); err != nil {
			return false, fmt.Errorf("seed student %s: %w", s.StudentID, err)
		}
	}
	for _, t := range Teachers {
		if _, err := set.Teachers.Add(ctx, t); err != nil {
			return false, fmt.Errorf("seed teacher %s: %w", t.Name, err)
		}
	}
	for _, e := range Expenses {
		if _, err := set.Expenses.Add(ctx, e); err != nil {
			return false, fmt.Errorf("seed expense %s: %w", e.Item, err)
		}
	}
	for _, p := range Partners {
		if _, err := set.Partners.Add(ctx, p); err != nil {
			return false, fmt.Errorf("seed partner %s: %w", p.Username, err)
		}
	}
	logger.Info("demo records written",
		"students", len(Students),
		"teachers", len(Teachers),
		"expenses", len(Expenses),
		"partners", len(Partners),
	)
	return true, nil
}
