/*
scheduler.go - Periodic company report refresh

PURPOSE:
  Recomputes the company expense report on a fixed interval, records each
  run, and publishes the latest totals as metrics. Dashboards and alerts
  read the metrics; the run history is served at /api/reports/runs.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Each run is saved as "running", then "completed" or "failed"
  - A failed run leaves the published gauges untouched
  - Can be restarted after Stop; each Start gets a fresh stop channel

USAGE:
  scheduler := NewReportScheduler(handler, time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - payroll/aggregate.go: ComputeCompanyExpenses
  - metrics/metrics.go: ObserveReportRun
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/metrics"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ReportScheduler refreshes the company report in the background.
type ReportScheduler struct {
	Store         *sqlite.Store
	Service       *payroll.Service
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	// nextRun has its own lock: Stop holds mu while the loop drains.
	nextMu  sync.Mutex
	nextRun time.Time
}

// NewReportScheduler creates a scheduler sharing h's store and service and
// attaches it to h, so /api/reports/runs can show the next run. A
// non-positive interval disables it.
func NewReportScheduler(h *Handler, interval time.Duration) *ReportScheduler {
	rs := &ReportScheduler{
		Store:         h.Store,
		Service:       h.Service,
		Logger:        h.Logger,
		CheckInterval: interval,
		Enabled:       interval > 0,
	}
	h.Scheduler = rs
	return rs
}

// Start begins the scheduler.
func (rs *ReportScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Logger.Info("report scheduler disabled")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.setNextRun(time.Now().Add(rs.CheckInterval))
	rs.wg.Add(1)

	go rs.run(rs.ticker, rs.stop)

	rs.Logger.Info("report scheduler started", "interval", rs.CheckInterval.String())
}

// Stop stops the scheduler and waits for an in-flight run.
func (rs *ReportScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.setNextRun(time.Time{})
		rs.Logger.Info("report scheduler stopped")
	}
}

func (rs *ReportScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer rs.wg.Done()

	rs.RunNow(context.Background())

	for {
		select {
		case t := <-ticker.C:
			rs.setNextRun(t.Add(rs.CheckInterval))
			rs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow performs one refresh and returns its record.
func (rs *ReportScheduler) RunNow(ctx context.Context) (sqlite.ReportRun, error) {
	start := time.Now().UTC()
	run := sqlite.ReportRun{
		ID:        uuid.NewString(),
		Status:    RunStatusRunning,
		StartedAt: start,
	}
	if err := rs.Store.SaveReportRun(ctx, run); err != nil {
		rs.Logger.Error("failed to save report run", "error", err)
		return run, fmt.Errorf("failed to save run record: %w", err)
	}

	report, excluded, err := rs.Service.CompanyReportWithExclusions(ctx)
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	if err != nil {
		run.Status = RunStatusFailed
		run.Error = err.Error()
		metrics.ObserveReportRun(metrics.ResultError, completed.Sub(start), 0, decimal.Zero)
		if saveErr := rs.Store.SaveReportRun(ctx, run); saveErr != nil {
			rs.Logger.Error("failed to update report run", "run_id", run.ID, "error", saveErr)
		}
		rs.Logger.Error("report refresh failed", "run_id", run.ID, "error", err)
		return run, err
	}

	run.Status = RunStatusCompleted
	run.Months = len(report)
	if len(report) > 0 {
		run.LatestTotal = report[0].TotalExpense
	}
	metrics.ObserveReportRun(metrics.ResultSuccess, completed.Sub(start), run.Months, run.LatestTotal)
	metrics.SetExcludedEmployees(excluded)

	if err := rs.Store.SaveReportRun(ctx, run); err != nil {
		rs.Logger.Error("failed to update report run", "run_id", run.ID, "error", err)
		return run, fmt.Errorf("failed to update run record: %w", err)
	}

	rs.Logger.Info("report refreshed",
		"run_id", run.ID,
		"months", run.Months,
		"excluded", excluded,
		"latest_total", run.LatestTotal.StringFixed(2))
	return run, nil
}

// GetNextRunTime returns when the next scheduled refresh will occur. ok is
// false while the scheduler is not running.
func (rs *ReportScheduler) GetNextRunTime() (time.Time, bool) {
	rs.mu.Lock()
	running := rs.ticker != nil
	rs.mu.Unlock()
	if !running {
		return time.Time{}, false
	}

	rs.nextMu.Lock()
	defer rs.nextMu.Unlock()
	return rs.nextRun, true
}

func (rs *ReportScheduler) setNextRun(t time.Time) {
	rs.nextMu.Lock()
	rs.nextRun = t
	rs.nextMu.Unlock()
}
