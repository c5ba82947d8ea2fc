package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ReportPeriod string

const (
	PeriodDaily   ReportPeriod = "daily"
	PeriodWeekly  ReportPeriod = "weekly"
	PeriodMonthly ReportPeriod = "monthly"
)

// ParseReportPeriod is case-insensitive. Unknown values are returned as-is and
// treated as daily by the window computation.
func ParseReportPeriod(s string) ReportPeriod {
	return ReportPeriod(strings.ToLower(strings.TrimSpace(s)))
}

// ReportResult is derived on demand and never persisted.
type ReportResult struct {
	Period       ReportPeriod     `json:"period"`
	Title        string           `json:"title"`
	GeneratedAt  time.Time        `json:"generated_at"`
	WindowStart  time.Time        `json:"window_start"`
	Items        []CheckoutRecord `json:"items"`
	Total        int              `json:"total"`
	OverdueCount int              `json:"overdue_count"`
	OverdueRate  int              `json:"overdue_rate"`
}

type ItemSummary struct {
	Name           string `json:"name"`
	TotalCheckouts int    `json:"total_checkouts"`
	OverdueCount   int    `json:"overdue_count"`
}

type ItemSummaryReport struct {
	Items            []ItemSummary `json:"items"`
	AverageCheckouts int           `json:"average_checkouts"`
}

// ReportEmail is the payload handed to an email provider.
type ReportEmail struct {
	Recipient    string
	Title        string
	Date         string
	TotalCount   int
	OverdueCount int
	OverdueRate  string
	RowsHTML     string
}

type DispatchStatus string

const (
	DispatchStatusSent   DispatchStatus = "SENT"
	DispatchStatusFailed DispatchStatus = "FAILED"
)

// ReportDispatch records one attempt to email a report.
type ReportDispatch struct {
	ID           uuid.UUID      `json:"id"`
	Recipient    string         `json:"recipient"`
	Period       ReportPeriod   `json:"period"`
	Title        string         `json:"title"`
	TotalCount   int            `json:"total_count"`
	OverdueCount int            `json:"overdue_count"`
	OverdueRate  int            `json:"overdue_rate"`
	Status       DispatchStatus `json:"status"`
	Error        string         `json:"error,omitempty"`
	SentOn       time.Time      `json:"sent_on"`
}
