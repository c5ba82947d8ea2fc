package postgres

import (
	"context"
	"database/sql"

	"scanimals-checkout/internal/logger"
	"scanimals-checkout/internal/repository"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_dispatches (
    id            UUID PRIMARY KEY,
    recipient     TEXT NOT NULL,
    period        TEXT NOT NULL,
    title         TEXT NOT NULL,
    total_count   INTEGER NOT NULL,
    overdue_count INTEGER NOT NULL,
    overdue_rate  INTEGER NOT NULL,
    status        TEXT NOT NULL,
    error         TEXT NOT NULL DEFAULT '',
    sent_on       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_report_dispatches_sent_on ON report_dispatches (sent_on DESC);
`

type Store struct {
	db *sql.DB
	repository.ReportDispatchRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                       db,
		ReportDispatchRepository: NewReportDispatchRepository(db),
	}
}

// EnsureSchema creates the dispatch log table if it does not exist
func (s *Store) EnsureSchema(ctx context.Context) error {
	logger.DatabaseCall("CREATE", "report_dispatches")
	_, err := s.db.ExecContext(ctx, schema)
	logger.DatabaseResult("CREATE", 0, err)
	return err
}
