package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"connectrpc.com/connect"

	"github.com/abira1/Academy-Management-System/internal/calculator"
	"github.com/abira1/Academy-Management-System/internal/export"
	"github.com/abira1/Academy-Management-System/internal/mirror"
	"github.com/abira1/Academy-Management-System/internal/models"
)

// DashboardService implements the DashboardService RPC interface: figures
// folded from the mirrors at read time.
type DashboardService struct {
	set    *mirror.Set
	policy calculator.IncomePolicy
	now    func() time.Time
	logger *slog.Logger
}

// NewDashboardService creates a DashboardService. policy is used when a
// request does not name one.
func NewDashboardService(set *mirror.Set, policy calculator.IncomePolicy, logger *slog.Logger) *DashboardService {
	return &DashboardService{set: set, policy: policy, now: time.Now, logger: logger}
}

// Handler returns the service's path prefix and HTTP handler.
func (s *DashboardService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	mux := http.NewServeMux()
	mux.Handle(AdminOverviewProcedure, connect.NewUnaryHandler(AdminOverviewProcedure, s.AdminOverview, opts...))
	mux.Handle(ReceptionOverviewProcedure, connect.NewUnaryHandler(ReceptionOverviewProcedure, s.ReceptionOverview, opts...))
	mux.Handle(PartnerStatementProcedure, connect.NewUnaryHandler(PartnerStatementProcedure, s.PartnerStatement, opts...))
	mux.Handle(ExportProcedure, connect.NewUnaryHandler(ExportProcedure, s.Export, opts...))
	return "/" + DashboardServiceName + "/", mux
}

// AdminOverview returns the headline totals and the monthly trend.
func (s *DashboardService) AdminOverview(ctx context.Context, req *connect.Request[OverviewRequest]) (*connect.Response[AdminOverviewResponse], error) {
	if _, err := authorize(ctx, models.RoleAdmin); err != nil {
		return nil, err
	}
	policy, err := s.policyFor(req.Msg.IncomePolicy)
	if err != nil {
		return nil, err
	}

	sum := calculator.Summarize(s.set.Ledger(), s.at(req.Msg.At), policy)
	return connect.NewResponse(&AdminOverviewResponse{
		StudentCount:       sum.StudentCount,
		TotalIncome:        sum.TotalIncome,
		TotalDue:           sum.TotalDue,
		TotalSalaries:      sum.TotalSalaries,
		TotalOtherExpenses: sum.TotalOtherExpenses,
		TotalExpenses:      sum.TotalExpenses,
		NetProfit:          sum.NetProfit,
		AllocatedShare:     sum.AllocatedShare,
		Trend:              trendView(sum.Trend),
		StaleCollections:   s.staleCollections(),
	}), nil
}

// ReceptionOverview returns the front-desk figures: collections and dues.
func (s *DashboardService) ReceptionOverview(ctx context.Context, req *connect.Request[OverviewRequest]) (*connect.Response[ReceptionOverviewResponse], error) {
	if _, err := authorize(ctx, staff...); err != nil {
		return nil, err
	}
	students := s.set.Students.Snapshot()
	expenses := s.set.Expenses.Snapshot()
	return connect.NewResponse(&ReceptionOverviewResponse{
		StudentCount:       len(students),
		TotalPaid:          calculator.TotalIncome(students),
		TotalDue:           calculator.TotalDue(students),
		ExpenseCount:       len(expenses),
		TotalOtherExpenses: calculator.TotalOtherExpenses(expenses),
		StaleCollections:   s.staleCollections(),
	}), nil
}

// PartnerStatement returns a partner's estimated share. Partners get their
// own statement; admins name the partner.
func (s *DashboardService) PartnerStatement(ctx context.Context, req *connect.Request[PartnerStatementRequest]) (*connect.Response[PartnerStatementResponse], error) {
	session, err := authorize(ctx, models.RoleAdmin, models.RolePartner)
	if err != nil {
		return nil, err
	}
	share, elapsed, err := s.share(session, req.Msg.PartnerID, s.at(req.Msg.At))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&PartnerStatementResponse{
		PartnerID:       share.PartnerID,
		Username:        share.Username,
		SharePercentage: share.SharePercentage,
		ElapsedMonths:   elapsed,
		MonthlyProfit:   share.MonthlyProfit,
		YearlyIncome:    share.YearlyIncome,
		Estimate:        share.Estimate,
		Statement:       export.PartnerStatement(share),
	}), nil
}

// Export renders one report as a table. Reception may export students and
// expenses; partners only their own statement.
func (s *DashboardService) Export(ctx context.Context, req *connect.Request[ExportRequest]) (*connect.Response[ExportResponse], error) {
	var roles []models.Role
	switch req.Msg.Report {
	case ReportStudents, ReportExpenses:
		roles = staff
	case ReportTeachers, ReportTrend, ReportSummary:
		roles = adminOnly
	case ReportPartner:
		roles = []models.Role{models.RoleAdmin, models.RolePartner}
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown report %q", req.Msg.Report))
	}
	session, err := authorize(ctx, roles...)
	if err != nil {
		return nil, err
	}
	at := s.at(req.Msg.At)

	var table export.Table
	switch req.Msg.Report {
	case ReportStudents:
		table = export.StudentTable(s.set.Students.Snapshot())
	case ReportExpenses:
		table = export.ExpenseTable(s.set.Expenses.Snapshot())
	case ReportTeachers:
		table = export.TeacherTable(s.set.Teachers.Snapshot())
	case ReportTrend, ReportSummary:
		policy, err := s.policyFor(req.Msg.IncomePolicy)
		if err != nil {
			return nil, err
		}
		sum := calculator.Summarize(s.set.Ledger(), at, policy)
		if req.Msg.Report == ReportTrend {
			table = export.TrendTable(sum.Trend)
		} else {
			table = export.SummaryTable(sum)
		}
	case ReportPartner:
		share, _, err := s.share(session, req.Msg.PartnerID, at)
		if err != nil {
			return nil, err
		}
		table = export.PartnerStatement(share)
	}

	s.logger.Info("Report exported", "report", req.Msg.Report, "username", session.Username, "rows", len(table.Rows))
	return connect.NewResponse(&ExportResponse{Table: table}), nil
}

func (s *DashboardService) share(session models.Session, requested string, at time.Time) (calculator.Share, int, error) {
	partnerID := requested
	if session.Role == models.RolePartner {
		partnerID = session.PartnerID
	}
	if partnerID == "" {
		return calculator.Share{}, 0, connect.NewError(connect.CodeInvalidArgument, errMissingID)
	}

	l := s.set.Ledger()
	netProfit := calculator.NetProfit(l.Students, l.Teachers, l.Expenses)
	elapsed := calculator.ElapsedMonths(at)
	share := calculator.PartnerShare(l.Partners, partnerID, netProfit, elapsed)
	if !share.Estimate {
		return calculator.Share{}, 0, connect.NewError(connect.CodeNotFound, fmt.Errorf("partner %s not found", partnerID))
	}
	return share, elapsed, nil
}

func (s *DashboardService) at(requested *time.Time) time.Time {
	if requested != nil && !requested.IsZero() {
		return *requested
	}
	return s.now()
}

func (s *DashboardService) policyFor(name string) (calculator.IncomePolicy, error) {
	if name == "" {
		return s.policy, nil
	}
	p, err := calculator.ParseIncomePolicy(name)
	if err != nil {
		return 0, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return p, nil
}

func (s *DashboardService) staleCollections() []string {
	var out []string
	for c := range s.set.Stale() {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func trendView(t calculator.Trend) TrendView {
	v := TrendView{
		Year:             t.Year,
		IncomePolicy:     t.Policy.String(),
		Months:           make([]MonthView, len(t.Months)),
		UnbucketedIncome: t.UnbucketedIncome,
	}
	for i, m := range t.Months {
		v.Months[i] = MonthView{Month: m.Month.String(), Income: m.Income, Expense: m.Expense, Profit: m.Profit}
	}
	for _, sk := range t.Skipped {
		v.Skipped = append(v.Skipped, SkippedView{Collection: sk.Collection, ID: sk.ID, Date: sk.Date, Reason: sk.Reason})
	}
	return v
}
