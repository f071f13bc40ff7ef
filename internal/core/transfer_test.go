package core_test

import (
	"testing"

	"agri-inventory/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stockOf returns the stock of the item called name in warehouseID, or -1 when absent.
func stockOf(l *core.Ledger, warehouseID, name string) int {
	for _, v := range l.ListItems(core.ItemFilter{WarehouseID: warehouseID}) {
		if v.Name == name {
			return v.Stock
		}
	}
	return -1
}

func TestTransferFullQuantityMovesRecord(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	urea := mustItem(t, l, a.ID, "Urea", 50)
	b := mustWarehouse(t, l, "B")

	res, err := l.TransferStock(urea.ID, b.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, core.TransferMoved, res.Outcome)
	assert.Equal(t, urea.ID, res.TargetItemID, "full move keeps the item id")
	assert.False(t, res.SourceRemoved)

	moved, err := l.Item(urea.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, moved.WarehouseID)
	assert.Equal(t, "B", moved.WarehouseName)
	assert.Equal(t, 50, moved.Stock)

	assert.Empty(t, l.ListItems(core.ItemFilter{WarehouseID: a.ID}))

	history := l.ListTransactions(core.TransactionFilter{Type: core.Transfer})
	require.Len(t, history, 1)
	tx := history[0]
	assert.Equal(t, "A", tx.FromWarehouse)
	assert.Equal(t, "B", tx.ToWarehouse)
	assert.Equal(t, 50, tx.Quantity)
	assert.Equal(t, a.ID, tx.WarehouseID)
	assert.Equal(t, "Moved from A to B", tx.Note)
	assert.Equal(t, testToday, tx.Date)

	// A is empty now and may be deleted.
	require.NoError(t, l.DeleteWarehouse(a.ID))
}

func TestTransferPartialSplitsRecord(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	it := mustItem(t, l, a.ID, "Benih Jagung", 30)

	res, err := l.TransferStock(it.ID, b.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, core.TransferSplit, res.Outcome)
	assert.NotEqual(t, it.ID, res.TargetItemID)

	src, err := l.Item(it.ID)
	require.NoError(t, err)
	assert.Equal(t, 18, src.Stock)
	assert.Equal(t, a.ID, src.WarehouseID)

	clone, err := l.Item(res.TargetItemID)
	require.NoError(t, err)
	assert.Equal(t, 12, clone.Stock)
	assert.Equal(t, b.ID, clone.WarehouseID)
	assert.Equal(t, it.Unit, clone.Unit)
	assert.Equal(t, it.Price, clone.Price)

	// The clone is indexed: adding the same name in B is a duplicate.
	_, err = l.AddItem(core.NewItem{Name: "benih jagung", Unit: "kg", WarehouseID: b.ID})
	assert.ErrorIs(t, err, core.ErrDuplicate)
}

func TestTransferMergesIntoSameNamedItem(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	src := mustItem(t, l, a.ID, "Urea", 40)
	dst := mustItem(t, l, b.ID, "UREA", 5)

	res, err := l.TransferStock(src.ID, b.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, core.TransferMerged, res.Outcome)
	assert.Equal(t, dst.ID, res.TargetItemID)
	assert.False(t, res.SourceRemoved)
	assert.Equal(t, 25, stockOf(l, a.ID, "Urea"))
	assert.Equal(t, 20, stockOf(l, b.ID, "UREA"))

	res, err = l.TransferStock(src.ID, b.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, core.TransferMerged, res.Outcome)
	assert.True(t, res.SourceRemoved)

	_, err = l.Item(src.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 45, stockOf(l, b.ID, "UREA"))
	assert.Len(t, l.ListTransactions(core.TransactionFilter{Type: core.Transfer}), 2)
}

func TestTransferConservesQuantity(t *testing.T) {
	cases := []struct {
		name        string
		srcStock    int
		dstStock    int // -1 means no same-named item at the target
		quantity    int
		wantOutcome core.TransferOutcome
	}{
		{"merge partial", 30, 4, 10, core.TransferMerged},
		{"merge full", 30, 4, 30, core.TransferMerged},
		{"move", 30, -1, 30, core.TransferMoved},
		{"split", 30, -1, 7, core.TransferSplit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := newTestLedger(t)
			a := mustWarehouse(t, l, "A")
			b := mustWarehouse(t, l, "B")
			it := mustItem(t, l, a.ID, "Dolomit", tc.srcStock)
			if tc.dstStock >= 0 {
				mustItem(t, l, b.ID, "Dolomit", tc.dstStock)
			}

			sourceBefore := tc.srcStock
			targetBefore := max(tc.dstStock, 0)

			res, err := l.TransferStock(it.ID, b.ID, tc.quantity)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOutcome, res.Outcome)

			sourceAfter := max(stockOf(l, a.ID, "Dolomit"), 0)
			targetAfter := stockOf(l, b.ID, "Dolomit")
			assert.Equal(t, sourceBefore, sourceAfter+targetAfter-targetBefore)
			assert.Equal(t, int64(sourceBefore+targetBefore), l.Summary().TotalValue.IntPart()/12000)
		})
	}
}

func TestTransferMergeCannotExceedMaxStock(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	src := mustItem(t, l, a.ID, "Urea", 10)
	mustItem(t, l, b.ID, "Urea", core.MaxStock-5)

	_, err := l.TransferStock(src.ID, b.ID, 10)
	require.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, "quantity", core.FieldOf(err))
	assert.Equal(t, 10, stockOf(l, a.ID, "Urea"))
	assert.Equal(t, core.MaxStock-5, stockOf(l, b.ID, "Urea"))
	assert.Empty(t, l.ListTransactions(core.TransactionFilter{}))

	res, err := l.TransferStock(src.ID, b.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, core.TransferMerged, res.Outcome)
	assert.Equal(t, core.MaxStock, stockOf(l, b.ID, "Urea"))
}

func TestTransferRejections(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	it := mustItem(t, l, a.ID, "Urea", 10)

	tests := []struct {
		name     string
		itemID   string
		targetID string
		qty      int
		kind     error
	}{
		{"zero quantity", it.ID, b.ID, 0, core.ErrValidation},
		{"unknown item", "ghost", b.ID, 1, core.ErrNotFound},
		{"unknown target", it.ID, "nowhere", 1, core.ErrValidation},
		{"same warehouse", it.ID, a.ID, 1, core.ErrValidation},
		{"too much", it.ID, b.ID, 11, core.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.TransferStock(tt.itemID, tt.targetID, tt.qty)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	assert.Equal(t, 10, stockOf(l, a.ID, "Urea"))
	assert.Equal(t, -1, stockOf(l, b.ID, "Urea"))
	assert.Empty(t, l.ListTransactions(core.TransactionFilter{}))
}
