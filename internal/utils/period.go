package utils

import (
	"time"

	"scanimals-checkout/internal/domain"
)

// WindowStart returns the earliest checkout time included in a period report.
// Weekly and monthly windows are calendar subtractions from now, not
// truncated to midnight. Unknown periods fall back to daily.
func WindowStart(period domain.ReportPeriod, now time.Time) time.Time {
	switch period {
	case domain.PeriodWeekly:
		return now.AddDate(0, 0, -7)
	case domain.PeriodMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return StartOfDay(now)
	}
}

// FilterByPeriod keeps records checked out at or after the window start.
// Records without a checkout time are never part of a period.
func FilterByPeriod(records []domain.CheckoutRecord, period domain.ReportPeriod, now time.Time) []domain.CheckoutRecord {
	start := WindowStart(period, now)
	items := make([]domain.CheckoutRecord, 0, len(records))
	for _, r := range records {
		if r.CheckoutTime == nil {
			continue
		}
		if !r.CheckoutTime.Before(start) {
			items = append(items, r)
		}
	}
	return items
}
