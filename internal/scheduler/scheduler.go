package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abira1/Academy-Management-System/internal/calculator"
)

// LedgerSource is the read side of the mirror set.
type LedgerSource interface {
	Ledger() calculator.Ledger
	Stale() map[string]error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	source LedgerSource
	policy calculator.IncomePolicy
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// New creates a scheduler that logs the ledger summary on spec, a standard
// five-field cron expression evaluated in loc.
func New(spec string, loc *time.Location, source LedgerSource, policy calculator.IncomePolicy, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   spec,
		source: source,
		policy: policy,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Start schedules the summary job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", "spec", s.spec)
	if _, err := s.cron.AddFunc(s.spec, func() { s.Summarize() }); err != nil {
		return fmt.Errorf("schedule summary %q: %w", s.spec, err)
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler. The returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping scheduler")
	return s.cron.Stop()
}

// Summarize logs the current ledger summary and any stale mirrors, and
// returns the summary.
func (s *Scheduler) Summarize() calculator.Summary {
	now := s.now().In(s.loc)
	sum := calculator.Summarize(s.source.Ledger(), now, s.policy)

	s.logger.Info("ledger summary",
		"at", now.Format(time.RFC3339),
		"students", sum.StudentCount,
		"income", sum.TotalIncome,
		"due", sum.TotalDue,
		"expenses", sum.TotalExpenses,
		"net_profit", sum.NetProfit,
		"allocated_share", sum.AllocatedShare,
		"skipped_records", len(sum.Trend.Skipped),
	)
	if sum.AllocatedShare > 100 {
		s.logger.Warn("partner shares exceed 100%", "allocated_share", sum.AllocatedShare)
	}
	for collection, err := range s.source.Stale() {
		s.logger.Error("mirror is stale", "collection", collection, "error", err)
	}
	return sum
}
