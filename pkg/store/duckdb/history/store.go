package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/tco-atlas/pkg/models/store"
	"github.com/de-tools/tco-atlas/pkg/store/duckdb"
)

// Store keeps the audit trail of price refresher runs and the prices each run observed.
type Store interface {
	RecordRun(ctx context.Context, run store.SyncRun, prices []store.PriceRecord) error
	ListRuns(ctx context.Context, provider string, limit int) ([]store.SyncRun, error)
	SKUHistory(ctx context.Context, sku string, limit int) ([]store.PriceRecord, error)
}

const DefaultLimit = 20

type historyStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &historyStore{db: db}, nil
}

const insertRunQuery = `
	INSERT INTO price_sync_runs (
		id, provider, source, location, status, started_at,
		finished_at, skus_total, skus_priced, write_back, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertPriceQuery = `
	INSERT INTO price_history (run_id, provider, sku, price_per_hour, observed_at)
	VALUES (?, ?, ?, ?, ?)`

// RecordRun writes the run row and its price points in one transaction.
func (h *historyStore) RecordRun(ctx context.Context, run store.SyncRun, prices []store.PriceRecord) error {
	if run.ID == "" {
		return fmt.Errorf("sync run id is required")
	}

	return duckdb.RunInTx(ctx, h.db, func(ctx context.Context) error {
		tx := duckdb.GetTransaction(ctx)

		_, err := tx.ExecContext(ctx, insertRunQuery,
			run.ID,
			run.Provider,
			run.Source,
			run.Location,
			run.Status,
			run.StartedAt,
			nullTime(run.FinishedAt),
			run.SKUsTotal,
			run.SKUsPriced,
			run.WriteBack,
			nullString(run.Error),
		)
		if err != nil {
			return fmt.Errorf("insert sync run: %w", err)
		}

		if len(prices) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, insertPriceQuery)
		if err != nil {
			return fmt.Errorf("prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, price := range prices {
			_, err = stmt.ExecContext(ctx,
				run.ID,
				run.Provider,
				price.SKU,
				nullFloat(price.PricePerHour),
				price.ObservedAt,
			)
			if err != nil {
				return fmt.Errorf("insert price %s: %w", price.SKU, err)
			}
		}
		return nil
	})
}

// ListRuns returns the most recent runs first. An empty provider lists every provider.
func (h *historyStore) ListRuns(ctx context.Context, provider string, limit int) ([]store.SyncRun, error) {
	where := ""
	args := make([]interface{}, 0, 2)
	if provider != "" {
		where = "WHERE provider = ?"
		args = append(args, provider)
	}
	args = append(args, normalizeLimit(limit))

	query := fmt.Sprintf(`
		SELECT id, provider, source, location, status, started_at,
		       finished_at, skus_total, skus_priced, write_back, error_message
		FROM price_sync_runs
		%s
		ORDER BY started_at DESC
		LIMIT ?
	`, where)
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	runs := make([]store.SyncRun, 0)
	for rows.Next() {
		var (
			run        store.SyncRun
			finishedAt sql.NullTime
			errMsg     sql.NullString
		)
		err := rows.Scan(
			&run.ID,
			&run.Provider,
			&run.Source,
			&run.Location,
			&run.Status,
			&run.StartedAt,
			&finishedAt,
			&run.SKUsTotal,
			&run.SKUsPriced,
			&run.WriteBack,
			&errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		if errMsg.Valid {
			msg := errMsg.String
			run.Error = &msg
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync runs: %w", err)
	}
	return runs, nil
}

// SKUHistory returns the observed prices of one SKU, newest first.
func (h *historyStore) SKUHistory(ctx context.Context, sku string, limit int) ([]store.PriceRecord, error) {
	query := `
		SELECT run_id, sku, price_per_hour, observed_at
		FROM price_history
		WHERE sku = ?
		ORDER BY observed_at DESC
		LIMIT ?
	`
	rows, err := h.db.QueryContext(ctx, query, sku, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	records := make([]store.PriceRecord, 0)
	for rows.Next() {
		var (
			rec   store.PriceRecord
			price sql.NullFloat64
		)
		if err := rows.Scan(&rec.RunID, &rec.SKU, &price, &rec.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan price history: %w", err)
		}
		if price.Valid {
			v := price.Float64
			rec.PricePerHour = &v
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history: %w", err)
	}
	return records, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
