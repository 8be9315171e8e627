package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/de-tools/ledger-sync/pkg/models/store"
)

// Store keeps one row per pipeline run.
type Store interface {
	Add(ctx context.Context, run store.Run) error
	List(ctx context.Context, reportKey string, limit int) ([]store.Run, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) Add(ctx context.Context, run store.Run) error {
	files := run.Files
	if files == nil {
		files = []string{}
	}
	encoded, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("encode files: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO run_history (
			run_id, report_key, row_count, changed, hash, files,
			error_kind, error_message, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.ReportKey, run.RowCount, run.Changed, nullable(run.Hash), string(encoded),
		nullable(run.ErrorKind), nullable(run.ErrorMessage), run.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.RunID, err)
	}
	return nil
}

// List returns the newest runs first. An empty reportKey lists every report;
// a non-positive limit returns all rows.
func (s *defaultStore) List(ctx context.Context, reportKey string, limit int) ([]store.Run, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`
		SELECT run_id, report_key, row_count, changed, hash, files,
		       error_kind, error_message, completed_at
		FROM run_history`)
	if reportKey != "" {
		query.WriteString(` WHERE report_key = ?`)
		args = append(args, reportKey)
	}
	query.WriteString(` ORDER BY completed_at DESC, run_id`)
	if limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			run   store.Run
			files string
		)
		err := rows.Scan(
			&run.RunID, &run.ReportKey, &run.RowCount, &run.Changed, &run.Hash, &files,
			&run.ErrorKind, &run.ErrorMessage, &run.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(files), &run.Files); err != nil {
			return nil, fmt.Errorf("decode files for run %s: %w", run.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
