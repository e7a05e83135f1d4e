package duckdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_CreatesSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO price_sync_runs (id, provider, source, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		"run-001", "aws", "public", "finished", time.Now().UTC(),
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM price_sync_runs WHERE id = ?", "run-001").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = db.QueryRow("SELECT COUNT(*) FROM price_history").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestNewDB_RequiresPath(t *testing.T) {
	_, err := NewDB(Settings{})
	assert.Error(t, err)
}

func TestRunInTx(t *testing.T) {
	db, err := NewDB(Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	insert := func(id string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			tx := GetTransaction(ctx)
			require.NotNil(t, tx)
			_, err := tx.ExecContext(ctx,
				`INSERT INTO price_sync_runs (id, provider, source, status, started_at) VALUES (?, ?, ?, ?, ?)`,
				id, "aws", "public", "finished", time.Now().UTC())
			return err
		}
	}

	t.Run("commit", func(t *testing.T) {
		require.NoError(t, RunInTx(ctx, db, insert("committed")))
	})

	t.Run("rollback", func(t *testing.T) {
		err := RunInTx(ctx, db, func(ctx context.Context) error {
			if err := insert("rolled-back")(ctx); err != nil {
				return err
			}
			return errors.New("abort")
		})
		assert.EqualError(t, err, "abort")
	})

	var ids []string
	rows, err := db.Query("SELECT id FROM price_sync_runs ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"committed"}, ids)
}
