package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
	"scanimals-checkout/internal/utils"
)

const reportDateLayout = "January 2, 2006"

var reportRowsTemplate = template.Must(template.New("rows").Parse(
	`{{range .}}<tr><td>{{.Name}}</td><td>{{.CheckedOutBy}}</td><td>{{.CheckedOutAt}}</td><td>{{.Status}}</td>` +
		`<td>{{if .Link}}<a href="{{.Link}}">View</a>{{end}}</td></tr>{{end}}`))

type reportRow struct {
	Name         string
	CheckedOutBy string
	CheckedOutAt string
	Status       domain.CheckoutStatus
	Link         string
}

type reportService struct {
	checkouts       repository.CheckoutReader
	dispatches      repository.ReportDispatchRepository
	email           EmailService
	limiter         *rate.Limiter
	clock           func() time.Time
	viewItemBaseURL string
	tracer          trace.Tracer
}

// NewReportService wires the report use cases. dispatches and limiter may be
// nil, which disables the dispatch log and rate limiting respectively.
func NewReportService(
	checkouts repository.CheckoutReader,
	dispatches repository.ReportDispatchRepository,
	email EmailService,
	limiter *rate.Limiter,
	clock func() time.Time,
	viewItemBaseURL string,
) ReportService {
	if clock == nil {
		clock = time.Now
	}
	return &reportService{
		checkouts:       checkouts,
		dispatches:      dispatches,
		email:           email,
		limiter:         limiter,
		clock:           clock,
		viewItemBaseURL: strings.TrimRight(viewItemBaseURL, "/"),
		tracer:          otel.Tracer("scanimals/report"),
	}
}

func (s *reportService) GetReport(ctx context.Context, period domain.ReportPeriod) (*domain.ReportResult, error) {
	records, err := s.checkouts.ListCheckouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkouts: %w", err)
	}
	result := utils.Aggregate(records, period, s.clock())
	return &result, nil
}

func (s *reportService) GetItemSummary(ctx context.Context) (*domain.ItemSummaryReport, error) {
	records, err := s.checkouts.ListCheckouts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkouts: %w", err)
	}
	summary := utils.SummarizeItems(records, s.clock())
	return &summary, nil
}

// SendReport emails the period report to one recipient and records the
// attempt. A provider failure still returns the FAILED dispatch alongside an
// error wrapping ErrEmailDelivery.
func (s *reportService) SendReport(ctx context.Context, recipient string, period domain.ReportPeriod) (*domain.ReportDispatch, error) {
	logger.EnterMethod("reportService.SendReport", "recipient", recipient, "period", period)

	addr, err := mail.ParseAddress(strings.TrimSpace(recipient))
	if err != nil {
		logger.ExitMethodWithError("reportService.SendReport", err, "recipient", recipient)
		return nil, ErrInvalidRecipient
	}

	if s.limiter != nil && !s.limiter.Allow() {
		logger.Warn("Report email rate limited", "recipient", addr.Address)
		return nil, ErrRateLimited
	}

	ctx, span := s.tracer.Start(ctx, "report.send", trace.WithAttributes(
		attribute.String("report.period", string(period)),
	))
	defer span.End()

	result, err := s.GetReport(ctx, period)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		logger.ExitMethodWithError("reportService.SendReport", err)
		return nil, err
	}

	email, err := BuildReportEmail(*result, addr.Address, s.viewItemBaseURL)
	if err != nil {
		return nil, err
	}

	dispatch := &domain.ReportDispatch{
		Recipient:    addr.Address,
		Period:       result.Period,
		Title:        result.Title,
		TotalCount:   result.Total,
		OverdueCount: result.OverdueCount,
		OverdueRate:  result.OverdueRate,
		Status:       domain.DispatchStatusSent,
		SentOn:       result.GeneratedAt,
	}

	sendErr := s.email.SendReport(ctx, email)
	if sendErr != nil {
		dispatch.Status = domain.DispatchStatusFailed
		dispatch.Error = sendErr.Error()
		span.RecordError(sendErr)
		span.SetStatus(otelcodes.Error, sendErr.Error())
	}

	s.recordDispatch(ctx, dispatch)

	if sendErr != nil {
		logger.ExitMethodWithError("reportService.SendReport", sendErr, "recipient", addr.Address)
		return dispatch, fmt.Errorf("%w: %v", ErrEmailDelivery, sendErr)
	}
	logger.ExitMethod("reportService.SendReport", "recipient", addr.Address, "total", result.Total)
	return dispatch, nil
}

// recordDispatch never fails the send; a lost log row is only logged.
func (s *reportService) recordDispatch(ctx context.Context, d *domain.ReportDispatch) {
	if s.dispatches == nil {
		return
	}
	if err := s.dispatches.Create(ctx, d); err != nil {
		logger.Error("Failed to record report dispatch", "recipient", d.Recipient, "status", d.Status, "error", err)
	}
}

func (s *reportService) ListDispatches(ctx context.Context, limit int) ([]domain.ReportDispatch, error) {
	if s.dispatches == nil {
		return []domain.ReportDispatch{}, nil
	}
	return s.dispatches.ListRecent(ctx, limit)
}

// BuildReportEmail flattens a report into the provider payload
func BuildReportEmail(result domain.ReportResult, recipient, viewItemBaseURL string) (domain.ReportEmail, error) {
	rows, err := RenderReportRows(result.Items, result.GeneratedAt, viewItemBaseURL)
	if err != nil {
		return domain.ReportEmail{}, err
	}
	return domain.ReportEmail{
		Recipient:    recipient,
		Title:        result.Title,
		Date:         result.GeneratedAt.Format(reportDateLayout),
		TotalCount:   result.Total,
		OverdueCount: result.OverdueCount,
		OverdueRate:  fmt.Sprintf("%d%%", result.OverdueRate),
		RowsHTML:     rows,
	}, nil
}

// RenderReportRows renders one escaped <tr> per item. The View link is only
// emitted for items with an external link ID and a configured base URL.
func RenderReportRows(items []domain.CheckoutRecord, now time.Time, viewItemBaseURL string) (string, error) {
	rows := make([]reportRow, 0, len(items))
	for _, item := range items {
		row := reportRow{
			Name:         item.Name,
			CheckedOutBy: item.CheckedOutBy,
			CheckedOutAt: utils.FormatDateTimeIn(item.CheckoutTime, now.Location()),
			Status:       utils.Classify(item, now),
		}
		if item.ExternalLinkID != "" && viewItemBaseURL != "" {
			row.Link = strings.TrimRight(viewItemBaseURL, "/") + "/" + url.PathEscape(item.ExternalLinkID)
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := reportRowsTemplate.Execute(&buf, rows); err != nil {
		return "", fmt.Errorf("failed to render report rows: %w", err)
	}
	return buf.String(), nil
}
