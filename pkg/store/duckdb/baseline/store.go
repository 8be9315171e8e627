package baseline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/ledger-sync/pkg/models/domain"
	"github.com/de-tools/ledger-sync/pkg/models/store"
)

// Store persists the last content hash per report key.
type Store interface {
	ReadBaseline(ctx context.Context, reportKey string) (*domain.ContentHash, error)
	WriteBaseline(ctx context.Context, reportKey string, hash domain.ContentHash) error
	ListBaselines(ctx context.Context) ([]store.Baseline, error)
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

// ReadBaseline returns nil when no baseline has been stored for reportKey.
func (s *defaultStore) ReadBaseline(ctx context.Context, reportKey string) (*domain.ContentHash, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT hash FROM baseline_hashes WHERE report_key = ?`, reportKey,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline for %s: %w", reportKey, err)
	}

	h := domain.ContentHash(hash)
	return &h, nil
}

func (s *defaultStore) WriteBaseline(ctx context.Context, reportKey string, hash domain.ContentHash) error {
	if reportKey == "" {
		return fmt.Errorf("report key cannot be empty")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO baseline_hashes (report_key, hash, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (report_key) DO UPDATE SET
			hash = excluded.hash,
			updated_at = excluded.updated_at`,
		reportKey, string(hash), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write baseline for %s: %w", reportKey, err)
	}
	return nil
}

func (s *defaultStore) ListBaselines(ctx context.Context) ([]store.Baseline, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT report_key, hash, updated_at FROM baseline_hashes ORDER BY report_key`)
	if err != nil {
		return nil, fmt.Errorf("query baselines: %w", err)
	}
	defer rows.Close()

	var baselines []store.Baseline
	for rows.Next() {
		var b store.Baseline
		if err := rows.Scan(&b.ReportKey, &b.Hash, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan baseline: %w", err)
		}
		baselines = append(baselines, b)
	}
	return baselines, rows.Err()
}
