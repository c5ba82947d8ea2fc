package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"scanimals-checkout/internal/domain"
	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"
)

const maxListLimit = 200

type reportDispatchRepository struct {
	db *sql.DB
}

func NewReportDispatchRepository(db *sql.DB) repository.ReportDispatchRepository {
	return &reportDispatchRepository{db: db}
}

func (r *reportDispatchRepository) Create(ctx context.Context, d *domain.ReportDispatch) error {
	logger.EnterMethod("reportDispatchRepository.Create", "recipient", d.Recipient, "period", d.Period)

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.SentOn.IsZero() {
		d.SentOn = time.Now()
	}

	query := `INSERT INTO report_dispatches (id, recipient, period, title, total_count, overdue_count, overdue_rate, status, error, sent_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	logger.DatabaseCall("INSERT", "report_dispatches", "dispatchID", d.ID)

	result, err := r.db.ExecContext(ctx, query,
		d.ID, d.Recipient, string(d.Period), d.Title, d.TotalCount, d.OverdueCount, d.OverdueRate, string(d.Status), d.Error, d.SentOn)
	var affected int64
	if err == nil {
		affected, _ = result.RowsAffected()
	}
	logger.DatabaseResult("INSERT", affected, err, "dispatchID", d.ID)

	if err != nil {
		logger.ExitMethodWithError("reportDispatchRepository.Create", err, "dispatchID", d.ID)
		return err
	}
	logger.ExitMethod("reportDispatchRepository.Create", "dispatchID", d.ID)
	return nil
}

func (r *reportDispatchRepository) ListRecent(ctx context.Context, limit int) ([]domain.ReportDispatch, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT id, recipient, period, title, total_count, overdue_count, overdue_rate, status, error, sent_on
	          FROM report_dispatches ORDER BY sent_on DESC LIMIT $1`
	logger.DatabaseCall("SELECT", "report_dispatches", "limit", limit)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, err
	}
	defer rows.Close()

	dispatches := []domain.ReportDispatch{}
	for rows.Next() {
		var d domain.ReportDispatch
		var period, status string
		if err := rows.Scan(&d.ID, &d.Recipient, &period, &d.Title, &d.TotalCount, &d.OverdueCount, &d.OverdueRate, &status, &d.Error, &d.SentOn); err != nil {
			return nil, err
		}
		d.Period = domain.ReportPeriod(period)
		d.Status = domain.DispatchStatus(status)
		dispatches = append(dispatches, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult("SELECT", int64(len(dispatches)), nil)
	return dispatches, nil
}
