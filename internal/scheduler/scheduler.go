package scheduler

import (
	"github.com/robfig/cron/v3"

	"scanimals-checkout/internal/jobs"
	"scanimals-checkout/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler on the configured clock with seconds
// precision. Report jobs are only registered when withReports is set so
// that the server and the standalone reporter never both send them.
func NewScheduler(jobRunner *jobs.JobRunner, withReports bool) *Scheduler {
	c := cron.New(
		cron.WithLocation(jobRunner.Config().Location()),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs(withReports)
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs(withReports bool) {
	cfg := s.jobs.Config().Scheduler

	if s.jobs.HasDashboard() {
		s.register("TickDashboard", cfg.DashboardTick, s.jobs.TickDashboard)
	}

	if withReports {
		s.register("SendDailyReport", cfg.DailyReport, s.jobs.SendDailyReport)
		s.register("SendWeeklyReport", cfg.WeeklyReport, s.jobs.SendWeeklyReport)
		s.register("SendMonthlyReport", cfg.MonthlyReport, s.jobs.SendMonthlyReport)
	}

	logger.Info("Cron jobs registered", "count", len(s.cron.Entries()))
}

// register skips jobs with an empty schedule
func (s *Scheduler) register(name, schedule string, job func()) {
	if schedule == "" {
		logger.Info("Job disabled", "job", name)
		return
	}
	if _, err := s.cron.AddFunc(schedule, job); err != nil {
		logger.Error("Failed to register job", "job", name, "schedule", schedule, "error", err)
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler has any jobs registered
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
