package core_test

import (
	"testing"

	"agri-inventory/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryAndWarehouseSummaries(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	mustWarehouse(t, l, "C")

	_, err := l.AddItem(core.NewItem{Name: "Urea", Unit: "kg", Stock: 100, Price: 2500, MinStock: 20, WarehouseID: a.ID})
	require.NoError(t, err)
	_, err = l.AddItem(core.NewItem{Name: "Cangkul", Unit: "pcs", Stock: 3, Price: 75000, WarehouseID: a.ID})
	require.NoError(t, err)
	_, err = l.AddItem(core.NewItem{Name: "Benih Padi", Unit: "sak", Stock: 10, Price: 50000, MinStock: 10, WarehouseID: b.ID})
	require.NoError(t, err)

	s := l.Summary()
	assert.Equal(t, 3, s.TotalItems)
	assert.Equal(t, 2, s.LowStockCount, "Cangkul (3 <= 10) and Benih Padi (10 <= 10)")
	assert.Equal(t, "975000", s.TotalValue.String())
	assert.Equal(t, 3, s.TotalWarehouses)

	rows := l.WarehouseSummaries()
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[0].Warehouse.Name)
	assert.Equal(t, 2, rows[0].ItemCount)
	assert.Equal(t, "475000", rows[0].TotalValue.String())
	assert.Equal(t, 1, rows[1].ItemCount)
	assert.Equal(t, 0, rows[2].ItemCount)
	assert.True(t, rows[2].TotalValue.IsZero())
}

func TestListItemsSortedAndFiltered(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "Gudang Utama")
	b := mustWarehouse(t, l, "Gudang Timur")
	mustItem(t, l, a.ID, "pupuk kandang", 50)
	mustItem(t, l, a.ID, "Benih Cabai", 2)
	mustItem(t, l, b.ID, "Arit", 8)
	mustItem(t, l, b.ID, "benih cabai", 20)

	all := l.ListItems(core.ItemFilter{})
	require.Len(t, all, 4)
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = v.Name
	}
	assert.Equal(t, "Arit", names[0])
	assert.ElementsMatch(t, []string{"Benih Cabai", "benih cabai"}, names[1:3])
	assert.Equal(t, "pupuk kandang", names[3])

	onlyA := l.ListItems(core.ItemFilter{WarehouseID: a.ID})
	require.Len(t, onlyA, 2)
	assert.True(t, onlyA[0].LowStock, "Benih Cabai has 2 <= 5")
	assert.False(t, onlyA[1].LowStock)
	assert.Equal(t, "600000", onlyA[1].Value.String())

	assert.Empty(t, l.ListItems(core.ItemFilter{WarehouseID: "unknown"}))

	timur := l.ListItems(core.ItemFilter{Search: "TIMUR"})
	assert.Len(t, timur, 2, "search covers the warehouse name")
	assert.Len(t, l.ListItems(core.ItemFilter{Search: "cabai", WarehouseID: b.ID}), 1)
}

func TestListTransferCandidates(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	c := mustWarehouse(t, l, "C")
	urea := mustItem(t, l, a.ID, "Urea", 10)
	mustItem(t, l, a.ID, "Empty Sack", 0)
	ureaB := mustItem(t, l, b.ID, "urea", 7)

	cands := l.ListTransferCandidates()
	require.Len(t, cands, 2)
	for _, cand := range cands {
		assert.Positive(t, cand.Item.Stock)
	}

	var fromA core.TransferCandidate
	for _, cand := range cands {
		if cand.Item.ID == urea.ID {
			fromA = cand
		}
	}
	require.Len(t, fromA.Targets, 2)
	assert.Equal(t, b.ID, fromA.Targets[0].WarehouseID)
	assert.True(t, fromA.Targets[0].HasMerge())
	assert.Equal(t, ureaB.ID, fromA.Targets[0].MergeItemID)
	assert.Equal(t, 7, fromA.Targets[0].MergeStock)
	assert.Equal(t, "kg", fromA.Targets[0].MergeUnit)
	assert.Equal(t, c.ID, fromA.Targets[1].WarehouseID)
	assert.False(t, fromA.Targets[1].HasMerge())
}

func TestListTransactionsFiltersAndOrder(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	b := mustWarehouse(t, l, "B")
	urea := mustItem(t, l, a.ID, "Urea", 100)
	sekop := mustItem(t, l, a.ID, "Sekop", 10)

	adjust := func(id string, typ core.TransactionType, qty int, date, note string) {
		t.Helper()
		_, err := l.AdjustStock(core.Adjustment{ItemID: id, Type: typ, Quantity: qty, Date: date, Note: note})
		require.NoError(t, err)
	}
	adjust(urea.ID, core.StockIn, 10, "2024-05-01", "")
	adjust(urea.ID, core.StockOut, 5, "2024-05-03", "sold to Pak Budi")
	adjust(sekop.ID, core.StockIn, 2, "2024-05-01", "")
	adjust(sekop.ID, core.StockOut, 1, testToday, "")
	_, err := l.TransferStock(urea.ID, b.ID, 20)
	require.NoError(t, err)

	all := l.ListTransactions(core.TransactionFilter{})
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if prev.Date == cur.Date {
			assert.True(t, prev.Timestamp.After(cur.Timestamp), "same date sorts newest timestamp first")
		} else {
			assert.Greater(t, prev.Date, cur.Date)
		}
	}
	assert.Equal(t, core.Transfer, all[0].Type, "transfer is dated today and was recorded last")
	assert.Equal(t, "Sekop", all[3].ItemName, "sekop stock-in is the later of the two 2024-05-01 entries")
	assert.Equal(t, "Urea", all[4].ItemName)

	assert.Len(t, l.ListTransactions(core.TransactionFilter{Text: "UREA"}), 3)
	assert.Len(t, l.ListTransactions(core.TransactionFilter{Text: "budi"}), 1)
	assert.Len(t, l.ListTransactions(core.TransactionFilter{Type: core.StockIn}), 2)
	assert.Len(t, l.ListTransactions(core.TransactionFilter{Date: "2024-05-01"}), 2)
	assert.Len(t, l.ListTransactions(core.TransactionFilter{Text: "urea", Type: core.StockIn, Date: "2024-05-01"}), 1)
	none := l.ListTransactions(core.TransactionFilter{Text: "urea", Date: "2023-01-01"})
	assert.NotNil(t, none)
	assert.Empty(t, none)

	stats := l.TransactionStatistics()
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.ByType[core.StockIn])
	assert.Equal(t, 2, stats.ByType[core.StockOut])
	assert.Equal(t, 1, stats.ByType[core.Transfer])
	assert.Equal(t, 2, stats.Today)
}

func TestViewsDoNotExposeState(t *testing.T) {
	l := newTestLedger(t)
	a := mustWarehouse(t, l, "A")
	it := mustItem(t, l, a.ID, "Urea", 10)
	_, err := l.AdjustStock(core.Adjustment{ItemID: it.ID, Type: core.StockIn, Quantity: 1, Date: testToday})
	require.NoError(t, err)

	items := l.ListItems(core.ItemFilter{})
	items[0].Stock = 999
	txs := l.ListTransactions(core.TransactionFilter{})
	*txs[0].NewStock = 999

	got, err := l.Item(it.ID)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Stock)
	assert.Equal(t, 11, *l.ListTransactions(core.TransactionFilter{})[0].NewStock)

	before := l.Summary()
	assert.Equal(t, before, l.Summary(), "reads are idempotent")
}
