package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenWithOptions(ctx, "sqlite", filepath.Join(t.TempDir(), "t.db"), DefaultOptions())
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	stmt := `CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY)`
	require.NoError(t, Migrate(ctx, db, []string{stmt, stmt}), "statements are idempotent")
	assert.Error(t, Migrate(ctx, db, []string{"NOT SQL"}))
}

func TestOpenWithOptions_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Retries = 3
	opts.RetryBackoff = time.Hour
	_, err := OpenWithOptions(ctx, "mysql", "u:p@tcp(127.0.0.1:1)/none?timeout=50ms", opts)
	assert.Error(t, err)
}
