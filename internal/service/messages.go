package service

import (
	"time"

	"github.com/abira1/Academy-Management-System/internal/export"
	"github.com/abira1/Academy-Management-System/internal/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	PartnerID string      `json:"partnerId,omitempty"`
}

type ListRequest struct{}

type ListResponse[T any] struct {
	Records []T `json:"records"`

	// Stale is set when the collection's listener dropped and the records
	// may be out of date.
	Stale bool `json:"stale,omitempty"`
}

type AddRequest[T any] struct {
	Record T `json:"record"`
}

type UpdateRequest[P any] struct {
	ID    string `json:"id"`
	Patch P      `json:"patch"`
}

type RecordResponse[T any] struct {
	Record T `json:"record"`
}

type DeleteRequest struct {
	ID string `json:"id"`
}

type DeleteResponse struct{}

// OverviewRequest selects the reference instant and income policy for a
// dashboard figure. Zero values mean "now" and the server's default policy.
type OverviewRequest struct {
	At           *time.Time `json:"at,omitempty"`
	IncomePolicy string     `json:"incomePolicy,omitempty"`
}

type MonthView struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

type SkippedView struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
}

type TrendView struct {
	Year             int           `json:"year"`
	IncomePolicy     string        `json:"incomePolicy"`
	Months           []MonthView   `json:"months"`
	UnbucketedIncome float64       `json:"unbucketedIncome"`
	Skipped          []SkippedView `json:"skipped,omitempty"`
}

type AdminOverviewResponse struct {
	StudentCount       int       `json:"studentCount"`
	TotalIncome        float64   `json:"totalIncome"`
	TotalDue           float64   `json:"totalDue"`
	TotalSalaries      float64   `json:"totalSalaries"`
	TotalOtherExpenses float64   `json:"totalOtherExpenses"`
	TotalExpenses      float64   `json:"totalExpenses"`
	NetProfit          float64   `json:"netProfit"`
	AllocatedShare     float64   `json:"allocatedShare"`
	Trend              TrendView `json:"trend"`
	StaleCollections   []string  `json:"staleCollections,omitempty"`
}

type ReceptionOverviewResponse struct {
	StudentCount       int      `json:"studentCount"`
	TotalPaid          float64  `json:"totalPaid"`
	TotalDue           float64  `json:"totalDue"`
	ExpenseCount       int      `json:"expenseCount"`
	TotalOtherExpenses float64  `json:"totalOtherExpenses"`
	StaleCollections   []string `json:"staleCollections,omitempty"`
}

// PartnerStatementRequest names the partner. Partners always get their own
// statement and PartnerID is ignored for them.
type PartnerStatementRequest struct {
	PartnerID string     `json:"partnerId,omitempty"`
	At        *time.Time `json:"at,omitempty"`
}

type PartnerStatementResponse struct {
	PartnerID       string       `json:"partnerId"`
	Username        string       `json:"username"`
	SharePercentage float64      `json:"sharePercentage"`
	ElapsedMonths   int          `json:"elapsedMonths"`
	MonthlyProfit   float64      `json:"monthlyProfit"`
	YearlyIncome    float64      `json:"yearlyIncome"`
	Estimate        bool         `json:"estimate"`
	Statement       export.Table `json:"statement"`
}

// Report kinds accepted by Export.
const (
	ReportStudents = "students"
	ReportTeachers = "teachers"
	ReportExpenses = "expenses"
	ReportTrend    = "trend"
	ReportSummary  = "summary"
	ReportPartner  = "partner"
)

type ExportRequest struct {
	Report       string     `json:"report"`
	PartnerID    string     `json:"partnerId,omitempty"`
	At           *time.Time `json:"at,omitempty"`
	IncomePolicy string     `json:"incomePolicy,omitempty"`
}

type ExportResponse struct {
	Table export.Table `json:"table"`
}
