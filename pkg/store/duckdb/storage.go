package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const BaselineSchema = `
	CREATE TABLE IF NOT EXISTS baseline_hashes (
		report_key VARCHAR PRIMARY KEY,
		hash VARCHAR NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
`

const RunHistorySchema = `
	CREATE TABLE IF NOT EXISTS run_history (
		run_id VARCHAR PRIMARY KEY,
		report_key VARCHAR NOT NULL,
		row_count INTEGER NOT NULL,
		changed BOOLEAN NOT NULL,
		hash VARCHAR NULL,
		files VARCHAR NOT NULL,
		error_kind VARCHAR NULL,
		error_message VARCHAR NULL,
		completed_at TIMESTAMP NOT NULL
	);
`

const ExchangeLogSchema = `
	CREATE TABLE IF NOT EXISTS exchange_log (
		report_key VARCHAR NOT NULL,
		version VARCHAR NOT NULL,
		request VARCHAR NOT NULL,
		response VARCHAR NULL,
		error VARCHAR NULL,
		logged_at TIMESTAMP NOT NULL
	);
`

var bootQueries = []string{
	BaselineSchema,
	RunHistorySchema,
	ExchangeLogSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
