package exchange

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/ledger-sync/pkg/models/store"
	"github.com/de-tools/ledger-sync/pkg/services/session"
)

// Store is the append-only request/response log.
type Store interface {
	session.ExchangeLogger
	ListExchanges(ctx context.Context, reportKey string, limit int) ([]store.Exchange, error)
}

type defaultStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db:  db,
		now: time.Now,
	}, nil
}

// LogExchange never fails the caller; write errors are logged and dropped.
func (s *defaultStore) LogExchange(ctx context.Context, entry session.ExchangeEntry) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchange_log (report_key, version, request, response, error, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ReportKey, entry.Version, entry.Request,
		nullable(entry.Response), nullable(entry.Error), s.now().UTC(),
	)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("report", entry.ReportKey).
			Msg("failed to log host exchange")
	}
}

func (s *defaultStore) ListExchanges(ctx context.Context, reportKey string, limit int) ([]store.Exchange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_key, version, request, response, error, logged_at
		FROM exchange_log
		WHERE report_key = ?
		ORDER BY logged_at DESC
		LIMIT ?`, reportKey, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []store.Exchange
	for rows.Next() {
		var e store.Exchange
		if err := rows.Scan(&e.ReportKey, &e.Version, &e.Request, &e.Response, &e.Error, &e.LoggedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	return exchanges, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
