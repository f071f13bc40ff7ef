package store

import (
	"context"
	"errors"
	"fmt"

	"agri-inventory/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore saves snapshots into the tables created by
// migrations/001_inventory.sql. A save replaces every row inside one
// transaction, so readers never observe a half-written state. It assumes a
// single writer.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Load(ctx context.Context) (*core.Snapshot, error) {
	var one int
	err := p.pool.QueryRow(ctx, "SELECT id FROM ledger_state WHERE id = 1").Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ledger state: %w", err)
	}

	snap := &core.Snapshot{
		Warehouses:   []core.Warehouse{},
		Items:        []core.Item{},
		Transactions: []core.Transaction{},
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, name, location, capacity, created_at
		FROM warehouses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query warehouses: %w", err)
	}
	for rows.Next() {
		var w core.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.Capacity, &w.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		snap.Warehouses = append(snap.Warehouses, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warehouses: %w", err)
	}

	rows, err = p.pool.Query(ctx, `
		SELECT id, name, unit, stock, price, min_stock, warehouse_id, warehouse_name, last_updated, created_at
		FROM items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	for rows.Next() {
		var it core.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Unit, &it.Stock, &it.Price, &it.MinStock,
			&it.WarehouseID, &it.WarehouseName, &it.LastUpdated, &it.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan item: %w", err)
		}
		snap.Items = append(snap.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	rows, err = p.pool.Query(ctx, `
		SELECT id, item_id, item_name, warehouse_id, warehouse_name, type, quantity, unit,
		       date, ts, note, old_stock, new_stock, from_warehouse, to_warehouse
		FROM stock_transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t core.Transaction
		var typ string
		if err := rows.Scan(&t.ID, &t.ItemID, &t.ItemName, &t.WarehouseID, &t.WarehouseName, &typ,
			&t.Quantity, &t.Unit, &t.Date, &t.Timestamp, &t.Note, &t.OldStock, &t.NewStock,
			&t.FromWarehouse, &t.ToWarehouse); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return snap, nil
}

func (p *PostgresStore) Save(ctx context.Context, snap core.Snapshot) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE stock_transactions, items, warehouses"); err != nil {
		return fmt.Errorf("truncate snapshot tables: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"warehouses"},
		[]string{"id", "position", "name", "location", "capacity", "created_at"},
		pgx.CopyFromSlice(len(snap.Warehouses), func(i int) ([]any, error) {
			w := snap.Warehouses[i]
			return []any{w.ID, i, w.Name, w.Location, w.Capacity, w.CreatedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy warehouses: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"items"},
		[]string{"id", "position", "name", "unit", "stock", "price", "min_stock",
			"warehouse_id", "warehouse_name", "last_updated", "created_at"},
		pgx.CopyFromSlice(len(snap.Items), func(i int) ([]any, error) {
			it := snap.Items[i]
			return []any{it.ID, i, it.Name, it.Unit, it.Stock, it.Price, it.MinStock,
				it.WarehouseID, it.WarehouseName, it.LastUpdated, it.CreatedAt}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy items: %w", err)
	}

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"stock_transactions"},
		[]string{"id", "position", "item_id", "item_name", "warehouse_id", "warehouse_name", "type",
			"quantity", "unit", "date", "ts", "note", "old_stock", "new_stock", "from_warehouse", "to_warehouse"},
		pgx.CopyFromSlice(len(snap.Transactions), func(i int) ([]any, error) {
			t := snap.Transactions[i]
			return []any{t.ID, i, t.ItemID, t.ItemName, t.WarehouseID, t.WarehouseName, string(t.Type),
				t.Quantity, t.Unit, t.Date, t.Timestamp, t.Note, t.OldStock, t.NewStock,
				t.FromWarehouse, t.ToWarehouse}, nil
		}))
	if err != nil {
		return fmt.Errorf("copy transactions: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO ledger_state (id, last_updated) VALUES (1, now())
		ON CONFLICT (id) DO UPDATE SET last_updated = EXCLUDED.last_updated`); err != nil {
		return fmt.Errorf("stamp ledger state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (p *PostgresStore) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, "TRUNCATE stock_transactions, items, warehouses, ledger_state"); err != nil {
		return fmt.Errorf("clear snapshot tables: %w", err)
	}
	return nil
}
