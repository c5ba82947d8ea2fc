package jobs

import (
	"scanimals-checkout/internal/config"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/service"
)

// Ticker recomputes a time-dependent view
type Ticker interface {
	Tick()
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	dashboard Ticker
	reports   service.ReportService
	config    *config.Config
}

// NewJobRunner creates a job runner. dashboard is nil in processes that only
// send scheduled reports.
func NewJobRunner(dashboard Ticker, reports service.ReportService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		dashboard: dashboard,
		reports:   reports,
		config:    cfg,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// HasDashboard reports whether the tick job has anything to drive
func (jr *JobRunner) HasDashboard() bool {
	return jr.dashboard != nil
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Debug("Starting job", "job", jobName)
	jobFunc()
	logger.Debug("Job completed", "job", jobName)
}

// TickDashboard reclassifies the dashboard against the current time
func (jr *JobRunner) TickDashboard() {
	if jr.dashboard == nil {
		return
	}
	jr.runWithRecovery("TickDashboard", jr.dashboard.Tick)
}

// RunAllReports sends every scheduled report once (for manual execution)
func (jr *JobRunner) RunAllReports() {
	jr.SendDailyReport()
	jr.SendWeeklyReport()
	jr.SendMonthlyReport()
}
