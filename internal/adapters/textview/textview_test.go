package textview_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"agri-inventory/internal/adapters/textview"
	"agri-inventory/internal/app"
	"agri-inventory/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMoneyUsesLocaleGrouping(t *testing.T) {
	id := textview.New(nil, language.Indonesian, "Rp")
	assert.Equal(t, "Rp 1.250.000", id.Money(decimal.NewFromInt(1250000)))
	assert.Equal(t, "Rp 0", id.Money(decimal.Zero))

	en := textview.New(nil, language.English, "")
	assert.Equal(t, "1,250,000", en.Money(decimal.NewFromInt(1250000)))
	assert.Equal(t, "12,345", en.Number(12345))
}

func TestItemsTableFlagsLowStock(t *testing.T) {
	var buf bytes.Buffer
	p := textview.New(&buf, language.Indonesian, "Rp")
	p.Items(&app.ItemListResult{Items: []core.ItemView{
		{
			Item:     core.Item{ID: "i1", Name: "Urea", Unit: "kg", Stock: 3, Price: 2500, WarehouseName: "Gudang Utama"},
			LowStock: true,
			Value:    decimal.NewFromInt(7500),
		},
		{
			Item:  core.Item{ID: "i2", Name: "Benih Padi Varietas Ciherang Super", Unit: "sak", Stock: 40, Price: 65000, WarehouseName: "Gudang Timur"},
			Value: decimal.NewFromInt(2600000),
		},
	}})

	out := buf.String()
	lines := strings.Split(out, "\n")
	var ureaLine, benihLine string
	for _, l := range lines {
		if strings.Contains(l, "Urea") {
			ureaLine = l
		}
		if strings.Contains(l, "Benih") {
			benihLine = l
		}
	}
	assert.True(t, strings.HasPrefix(ureaLine, "!"), ureaLine)
	assert.True(t, strings.HasPrefix(benihLine, " "), benihLine)
	assert.Contains(t, ureaLine, "Rp 7.500")
	assert.Contains(t, benihLine, "Rp 2.600.000")
	assert.Contains(t, benihLine, "~", "long names are clipped")
}

func TestEmptyTables(t *testing.T) {
	var buf bytes.Buffer
	p := textview.New(&buf, language.English, "Rp")
	p.Items(&app.ItemListResult{})
	p.Warehouses(&app.WarehouseListResult{})
	p.Candidates(&app.TransferCandidatesResult{})
	p.Transactions(&app.TransactionListResult{Stats: core.TransactionStats{ByType: map[core.TransactionType]int{}}})

	out := buf.String()
	assert.Contains(t, out, "No items found.")
	assert.Contains(t, out, "No warehouses found.")
	assert.Contains(t, out, "Nothing to transfer.")
	assert.Contains(t, out, "No transactions found.")
	assert.Contains(t, out, "Total 0 | in 0 | out 0 | transfer 0 | today 0")
}

func TestTransactionsShowMovement(t *testing.T) {
	oldStock, newStock := 40, 35
	var buf bytes.Buffer
	p := textview.New(&buf, language.English, "")
	p.Transactions(&app.TransactionListResult{
		Transactions: []core.Transaction{
			{
				ItemName: "Urea", Type: core.Transfer, Quantity: 10, Unit: "kg", Date: "2024-05-10",
				Timestamp: time.Now(), FromWarehouse: "A", ToWarehouse: "B", Note: "Moved from A to B",
			},
			{
				ItemName: "Urea", Type: core.StockOut, Quantity: 5, Unit: "kg", Date: "2024-05-09",
				WarehouseName: "A", OldStock: &oldStock, NewStock: &newStock, Note: "sold",
			},
		},
		Stats: core.TransactionStats{Total: 2, ByType: map[core.TransactionType]int{core.Transfer: 1, core.StockOut: 1}},
	})

	out := buf.String()
	assert.Contains(t, out, "TRANSFER")
	assert.Contains(t, out, "A -> B")
	assert.Contains(t, out, "40 -> 35  sold")
	assert.Contains(t, out, "Total 2 | in 0 | out 1 | transfer 1")
}

func TestTargetLabelMergeHint(t *testing.T) {
	p := textview.New(nil, language.Indonesian, "Rp")
	plain := core.TransferTarget{WarehouseID: "w2", WarehouseName: "Gudang Timur"}
	merge := core.TransferTarget{WarehouseID: "w3", WarehouseName: "Gudang Barat", MergeItemID: "i9", MergeStock: 1200, MergeUnit: "kg"}

	assert.Equal(t, "Gudang Timur (w2)", p.TargetLabel(plain))
	assert.Equal(t, "Gudang Barat (w3), merges with existing stock of 1.200 kg", p.TargetLabel(merge))
}

func TestTransferAndAdjustmentMessages(t *testing.T) {
	var buf bytes.Buffer
	p := textview.New(&buf, language.English, "")
	oldStock, newStock := 12, 4
	p.Adjustment(&app.StockAdjustmentResult{
		Item:        core.Item{Name: "Sekop", Stock: 4, MinStock: 10},
		Transaction: core.Transaction{Type: core.StockOut, Quantity: 8, Unit: "pcs", OldStock: &oldStock, NewStock: &newStock},
	})
	p.Transfer(&core.TransferResult{
		Outcome:       core.TransferMerged,
		SourceItemID:  "i1",
		SourceRemoved: true,
		TargetItemID:  "i2",
		Transaction:   core.Transaction{ItemName: "Urea", Quantity: 5, Unit: "kg", FromWarehouse: "A", ToWarehouse: "B"},
	})

	out := buf.String()
	assert.Contains(t, out, "OUT 8 pcs Sekop. Stock now 4 (was 12).")
	assert.Contains(t, out, "Warning: Sekop is at or below its minimum stock of 10.")
	assert.Contains(t, out, "Transferred 5 kg Urea from A to B (merged).")
	assert.Contains(t, out, "Source item i1 was emptied and removed.")
}
