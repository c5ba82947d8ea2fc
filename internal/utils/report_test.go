package utils

import (
	"testing"
	"time"

	"scanimals-checkout/internal/domain"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestWindowStart(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 35, 12, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), WindowStart(domain.PeriodDaily, now))
	assert.Equal(t, now.AddDate(0, 0, -7), WindowStart(domain.PeriodWeekly, now))
	assert.Equal(t, time.Date(2025, 6, 3, 14, 35, 12, 0, time.UTC), WindowStart(domain.PeriodWeekly, now))
	assert.Equal(t, time.Date(2025, 5, 10, 14, 35, 12, 0, time.UTC), WindowStart(domain.PeriodMonthly, now))
	assert.Equal(t, WindowStart(domain.PeriodDaily, now), WindowStart(domain.ReportPeriod("yearly"), now))
}

func TestFilterByPeriod(t *testing.T) {
	now := time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC)
	today := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	midnight := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2025, 6, 5, 8, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	records := []domain.CheckoutRecord{
		{ID: "today", CheckoutTime: &today},
		{ID: "midnight", CheckoutTime: &midnight},
		{ID: "week", CheckoutTime: &lastWeek},
		{ID: "month", CheckoutTime: &lastMonth},
		{ID: "undated"},
	}

	ids := func(rs []domain.CheckoutRecord) []string {
		out := []string{}
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []string{"today", "midnight"}, ids(FilterByPeriod(records, domain.PeriodDaily, now)))
	assert.Equal(t, []string{"today", "midnight", "week"}, ids(FilterByPeriod(records, domain.PeriodWeekly, now)))
	assert.Equal(t, []string{"today", "midnight", "week", "month"}, ids(FilterByPeriod(records, domain.PeriodMonthly, now)))
}

func TestAggregate(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	morning := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 6, 10, 17, 30, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)

	records := []domain.CheckoutRecord{
		{ID: "a", CheckoutTime: &morning},
		{ID: "b", CheckoutTime: &evening},
		{ID: "c", CheckoutTime: &evening, Override: domain.OverrideOverdue},
		{ID: "d", CheckoutTime: &yesterday},
		{ID: "e"},
	}

	t.Run("Daily", func(t *testing.T) {
		res := Aggregate(records, domain.PeriodDaily, now)
		assert.Equal(t, "Today's Report", res.Title)
		assert.Equal(t, 3, res.Total)
		assert.Equal(t, 2, res.OverdueCount)
		assert.Equal(t, 67, res.OverdueRate)
	})

	t.Run("Weekly", func(t *testing.T) {
		res := Aggregate(records, domain.PeriodWeekly, now)
		assert.Equal(t, "Weekly Report (Last 7 Days)", res.Title)
		assert.Equal(t, 4, res.Total)
		assert.Equal(t, 3, res.OverdueCount)
		assert.Equal(t, 75, res.OverdueRate)
	})

	t.Run("Empty", func(t *testing.T) {
		res := Aggregate(nil, domain.PeriodMonthly, now)
		assert.Equal(t, 0, res.Total)
		assert.Equal(t, 0, res.OverdueRate)
		assert.Empty(t, res.Items)
	})

	t.Run("Unknown period", func(t *testing.T) {
		res := Aggregate(records, domain.ReportPeriod(""), now)
		assert.Equal(t, "Inventory Report", res.Title)
		assert.Equal(t, 3, res.Total)
	})
}

func TestOverdueRate(t *testing.T) {
	tests := []struct {
		overdue, total, expected int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{5, 5, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, OverdueRate(tt.overdue, tt.total), "%d/%d", tt.overdue, tt.total)
	}
}

func TestReportTitle(t *testing.T) {
	assert.Equal(t, "Monthly Report (Last 30 Days)", ReportTitle(domain.PeriodMonthly))
	assert.Equal(t, "Inventory Report", ReportTitle("quarterly"))
}

func TestAggregate_Properties(t *testing.T) {
	periods := []domain.ReportPeriod{domain.PeriodDaily, domain.PeriodWeekly, domain.PeriodMonthly, "other"}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		records := make([]domain.CheckoutRecord, 0, n)
		for i := 0; i < n; i++ {
			r := genRecord(t)
			r.Override = domain.Override(rapid.IntRange(0, 2).Draw(t, "override"))
			records = append(records, r)
		}
		period := rapid.SampledFrom(periods).Draw(t, "period")
		now := genNow(t)

		first := Aggregate(records, period, now)
		second := Aggregate(records, period, now)
		if first.Total != second.Total || first.OverdueCount != second.OverdueCount || first.OverdueRate != second.OverdueRate {
			t.Fatalf("aggregate not idempotent: %+v vs %+v", first, second)
		}
		if first.OverdueCount > first.Total {
			t.Fatalf("overdue %d exceeds total %d", first.OverdueCount, first.Total)
		}
		if first.OverdueRate < 0 || first.OverdueRate > 100 {
			t.Fatalf("rate out of bounds: %d", first.OverdueRate)
		}
		if first.Total == 0 && first.OverdueRate != 0 {
			t.Fatal("empty report must have zero rate")
		}
	})
}

func TestSummarizeItems(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC)
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	records := []domain.CheckoutRecord{
		{ID: "1", Name: "Radio", CheckoutTime: &yesterday},
		{ID: "2", Name: "Radio", CheckoutTime: &today},
		{ID: "3", Name: "Bucket", CheckoutTime: &today},
		{ID: "4", CheckoutTime: &today},
	}

	report := SummarizeItems(records, now)
	assert.Equal(t, []domain.ItemSummary{
		{Name: "Bucket", TotalCheckouts: 1},
		{Name: "Radio", TotalCheckouts: 2, OverdueCount: 1},
		{Name: "Unnamed Item", TotalCheckouts: 1},
	}, report.Items)
	assert.Equal(t, 1, report.AverageCheckouts)

	empty := SummarizeItems(nil, now)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 0, empty.AverageCheckouts)
}
