package utils

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"scanimals-checkout/internal/domain"
)

const unnamedItem = "Unnamed Item"

var hundred = decimal.NewFromInt(100)

// ReportTitle is a fixed lookup per period
func ReportTitle(period domain.ReportPeriod) string {
	switch period {
	case domain.PeriodDaily:
		return "Today's Report"
	case domain.PeriodWeekly:
		return "Weekly Report (Last 7 Days)"
	case domain.PeriodMonthly:
		return "Monthly Report (Last 30 Days)"
	default:
		return "Inventory Report"
	}
}

// OverdueRate returns overdue/total as an integer percent, rounded half-up.
// An empty report has a rate of 0.
func OverdueRate(overdue, total int) int {
	if total == 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(overdue)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(total)), 0)
	return int(rate.IntPart())
}

// Aggregate builds the report for one period over a snapshot of records
func Aggregate(records []domain.CheckoutRecord, period domain.ReportPeriod, now time.Time) domain.ReportResult {
	items := FilterByPeriod(records, period, now)

	overdue := 0
	for _, item := range items {
		if IsOverdue(item, now) {
			overdue++
		}
	}

	return domain.ReportResult{
		Period:       period,
		Title:        ReportTitle(period),
		GeneratedAt:  now,
		WindowStart:  WindowStart(period, now),
		Items:        items,
		Total:        len(items),
		OverdueCount: overdue,
		OverdueRate:  OverdueRate(overdue, len(items)),
	}
}

// SummarizeItems groups checkouts by item name
func SummarizeItems(records []domain.CheckoutRecord, now time.Time) domain.ItemSummaryReport {
	byName := make(map[string]*domain.ItemSummary)
	for _, r := range records {
		name := r.Name
		if name == "" {
			name = unnamedItem
		}
		s, ok := byName[name]
		if !ok {
			s = &domain.ItemSummary{Name: name}
			byName[name] = s
		}
		s.TotalCheckouts++
		if IsOverdue(r, now) {
			s.OverdueCount++
		}
	}

	items := make([]domain.ItemSummary, 0, len(byName))
	total := 0
	for _, s := range byName {
		items = append(items, *s)
		total += s.TotalCheckouts
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	avg := 0
	if len(items) > 0 {
		avg = int(decimal.NewFromInt(int64(total)).
			DivRound(decimal.NewFromInt(int64(len(items))), 0).
			IntPart())
	}

	return domain.ItemSummaryReport{Items: items, AverageCheckouts: avg}
}
