package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const SyncRunsTableSchema = `
	CREATE TABLE IF NOT EXISTS price_sync_runs (
		id VARCHAR PRIMARY KEY,
		provider VARCHAR NOT NULL,
		source VARCHAR NOT NULL,
		location VARCHAR NOT NULL DEFAULT '',
		status VARCHAR NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NULL,
		skus_total INTEGER NOT NULL DEFAULT 0,
		skus_priced INTEGER NOT NULL DEFAULT 0,
		write_back BOOLEAN NOT NULL DEFAULT FALSE,
		error_message VARCHAR NULL
	);
`

const PriceHistoryTableSchema = `
	CREATE TABLE IF NOT EXISTS price_history (
		run_id VARCHAR NOT NULL,
		provider VARCHAR NOT NULL,
		sku VARCHAR NOT NULL,
		price_per_hour DOUBLE NULL,
		observed_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, sku)
	);
`

var bootQueries = []string{
	SyncRunsTableSchema,
	PriceHistoryTableSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	if settings.DbPath == "" {
		return nil, fmt.Errorf("database path is required")
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
