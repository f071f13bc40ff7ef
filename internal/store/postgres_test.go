package store_test

import (
	"context"
	"os"
	"testing"

	"agri-inventory/internal/core"
	"agri-inventory/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Only a dedicated test database is used; the tables are truncated.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping Postgres store test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/001_inventory.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "TRUNCATE stock_transactions, items, warehouses, ledger_state")
	require.NoError(t, err)

	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := setupTestDB(t)
	exercise(t, store.NewPostgresStore(pool))
}

func TestPostgresStoreHoldsLargestLedgerValues(t *testing.T) {
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	snap := sampleSnapshot()
	snap.Warehouses[0].Capacity = core.MaxStock
	snap.Items[0].Stock = core.MaxStock
	snap.Items[0].MinStock = core.MaxStock
	snap.Transactions[0].Quantity = core.MaxStock
	require.NoError(t, core.NewLedger(core.LedgerConfig{}).Restore(snap), "values are valid ledger state")

	require.NoError(t, s.Save(ctx, snap))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, core.MaxStock, got.Items[0].Stock)
	assert.Equal(t, core.MaxStock, got.Warehouses[0].Capacity)
}
