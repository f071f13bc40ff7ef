package core_test

import (
	"math"
	"testing"

	"agri-inventory/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T) *core.Ledger {
	t.Helper()
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	urea := mustItem(t, l, a.ID, "Urea", 40)
	mustItem(t, l, b.ID, "Sekop", 4)
	_, err := l.AdjustStock(core.Adjustment{ItemID: urea.ID, Type: core.StockOut, Quantity: 5, Date: testToday})
	require.NoError(t, err)
	_, err = l.TransferStock(urea.ID, b.ID, 10)
	require.NoError(t, err)
	return l
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	src := populated(t)
	snap := src.Snapshot()

	dst := newTestLedger(t)
	require.NoError(t, dst.Restore(snap))

	got := dst.Snapshot()
	assert.ElementsMatch(t, snap.Warehouses, got.Warehouses)
	assert.ElementsMatch(t, snap.Items, got.Items)
	assert.ElementsMatch(t, snap.Transactions, got.Transactions)
	assert.Equal(t, src.Summary().TotalValue.String(), dst.Summary().TotalValue.String())

	// The restored name index is live.
	_, err := dst.AddItem(core.NewItem{Name: "UREA", Unit: "kg", WarehouseID: snap.Warehouses[0].ID})
	assert.ErrorIs(t, err, core.ErrDuplicate)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := populated(t)
	snap := l.Snapshot()
	snap.Items[0].Stock = 1000
	snap.Warehouses[0].Name = "changed"
	*snap.Transactions[0].OldStock = -7

	again := l.Snapshot()
	assert.NotEqual(t, 1000, again.Items[0].Stock)
	assert.Equal(t, "A", again.Warehouses[0].Name)
	assert.Equal(t, 40, *again.Transactions[0].OldStock)
}

func TestRestoreRejectsDefects(t *testing.T) {
	base := populated(t).Snapshot()

	tests := []struct {
		name   string
		mutate func(s *core.Snapshot)
	}{
		{"dangling warehouse reference", func(s *core.Snapshot) { s.Items[0].WarehouseID = "gone" }},
		{"duplicate item id", func(s *core.Snapshot) { s.Items[1].ID = s.Items[0].ID }},
		{"duplicate warehouse id", func(s *core.Snapshot) { s.Warehouses[1].ID = s.Warehouses[0].ID }},
		{"duplicate name in warehouse", func(s *core.Snapshot) {
			s.Items[1].WarehouseID = s.Items[0].WarehouseID
			s.Items[1].Name = " urea"
		}},
		{"negative stock", func(s *core.Snapshot) { s.Items[0].Stock = -1 }},
		{"stock above maximum", func(s *core.Snapshot) { s.Items[0].Stock = math.MaxInt }},
		{"blank warehouse name", func(s *core.Snapshot) { s.Warehouses[0].Name = "" }},
		{"unknown transaction type", func(s *core.Snapshot) { s.Transactions[0].Type = "adjust" }},
		{"zero quantity transaction", func(s *core.Snapshot) { s.Transactions[0].Quantity = 0 }},
		{"malformed item id", func(s *core.Snapshot) { s.Items[0].ID = "has space" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := populated(t)
			before := l.Snapshot()

			bad := cloneSnapshot(base)
			tt.mutate(&bad)
			err := l.Restore(bad)
			require.ErrorIs(t, err, core.ErrValidation)
			assert.Equal(t, before, l.Snapshot(), "failed restore leaves state untouched")
		})
	}
}

func TestClear(t *testing.T) {
	l := populated(t)
	require.False(t, l.IsEmpty())

	l.Clear()
	assert.True(t, l.IsEmpty())
	assert.Zero(t, l.Summary().TotalWarehouses)
	assert.Empty(t, l.ListTransactions(core.TransactionFilter{}))

	w := mustWarehouse(t, l, "Fresh")
	mustItem(t, l, w.ID, "Urea", 1)
}

func cloneSnapshot(s core.Snapshot) core.Snapshot {
	out := core.Snapshot{
		Warehouses:   append([]core.Warehouse(nil), s.Warehouses...),
		Items:        append([]core.Item(nil), s.Items...),
		Transactions: append([]core.Transaction(nil), s.Transactions...),
	}
	return out
}
