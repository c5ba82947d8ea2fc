package jobs

import (
	"context"
	"time"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
)

const reportSendTimeout = 30 * time.Second

// SendDailyReport emails today's report to the configured recipients
func (jr *JobRunner) SendDailyReport() {
	jr.runWithRecovery("SendDailyReport", func() {
		jr.sendScheduledReport(domain.PeriodDaily)
	})
}

// SendWeeklyReport emails the last 7 days to the configured recipients
func (jr *JobRunner) SendWeeklyReport() {
	jr.runWithRecovery("SendWeeklyReport", func() {
		jr.sendScheduledReport(domain.PeriodWeekly)
	})
}

// SendMonthlyReport emails the last month to the configured recipients
func (jr *JobRunner) SendMonthlyReport() {
	jr.runWithRecovery("SendMonthlyReport", func() {
		jr.sendScheduledReport(domain.PeriodMonthly)
	})
}

// sendScheduledReport returns the number of reports delivered. One failed
// recipient does not stop the rest.
func (jr *JobRunner) sendScheduledReport(period domain.ReportPeriod) int {
	recipients := jr.config.Reports.Recipients
	if len(recipients) == 0 {
		logger.Info("No report recipients configured, skipping", "period", period)
		return 0
	}

	sent := 0
	for _, recipient := range recipients {
		ctx, cancel := context.WithTimeout(context.Background(), reportSendTimeout)
		dispatch, err := jr.reports.SendReport(ctx, recipient, period)
		cancel()
		if err != nil {
			logger.Error("Failed to send scheduled report",
				"period", period,
				"recipient", recipient,
				"error", err)
			continue
		}

		sent++
		logger.Debug("Sent scheduled report",
			"period", period,
			"recipient", recipient,
			"total", dispatch.TotalCount,
			"overdue", dispatch.OverdueCount)
	}

	logger.Info("Scheduled report run finished", "period", period, "sent", sent, "recipients", len(recipients))
	return sent
}
