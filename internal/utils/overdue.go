package utils

import (
	"time"

	"scanimals-checkout/internal/domain"
)

// CutoffHour is the same-day return deadline (17:00 on the evaluating clock)
const CutoffHour = 17

// StartOfDay truncates t to midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CutoffTime returns 17:00:00 on t's calendar day
func CutoffTime(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, CutoffHour, 0, 0, 0, t.Location())
}

// Classify decides whether a checkout is active or overdue at now.
// Manual overrides win over the time rule.
func Classify(record domain.CheckoutRecord, now time.Time) domain.CheckoutStatus {
	switch record.Override {
	case domain.OverrideOverdue:
		return domain.StatusOverdue
	case domain.OverrideActive:
		return domain.StatusActive
	}

	if record.CheckoutTime == nil {
		return domain.StatusActive
	}
	checkout := *record.CheckoutTime

	todayStart := StartOfDay(now)
	todayCutoff := CutoffTime(now)

	previousDayCheckout := checkout.Before(todayStart)
	pastCutoffToday := now.After(todayCutoff) && checkout.Before(todayCutoff)

	if previousDayCheckout || pastCutoffToday {
		return domain.StatusOverdue
	}
	return domain.StatusActive
}

// IsOverdue reports whether Classify yields StatusOverdue
func IsOverdue(record domain.CheckoutRecord, now time.Time) bool {
	return Classify(record, now) == domain.StatusOverdue
}

// PartitionOverdue splits records by classification, preserving order
func PartitionOverdue(records []domain.CheckoutRecord, now time.Time) (active, overdue []domain.CheckoutRecord) {
	for _, r := range records {
		if IsOverdue(r, now) {
			overdue = append(overdue, r)
		} else {
			active = append(active, r)
		}
	}
	return active, overdue
}
