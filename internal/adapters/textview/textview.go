// Package textview renders application results as fixed-width text tables.
// The CLI and the REPL share it so both print the same layout.
package textview

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"agri-inventory/internal/app"
	"agri-inventory/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Printer writes tables to w, formatting numbers for a locale.
type Printer struct {
	w        io.Writer
	num      *message.Printer
	currency string
}

func New(w io.Writer, locale language.Tag, currencySymbol string) *Printer {
	return &Printer{
		w:        w,
		num:      message.NewPrinter(locale),
		currency: currencySymbol,
	}
}

// Money formats a whole-unit amount with the currency symbol and locale grouping, e.g. "Rp 1.250.000".
func (p *Printer) Money(v decimal.Decimal) string {
	amount := p.num.Sprintf("%d", v.IntPart())
	if p.currency == "" {
		return amount
	}
	return p.currency + " " + amount
}

// Number formats n with locale grouping.
func (p *Printer) Number(n int) string {
	return p.num.Sprintf("%d", n)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) rule(ch string, width int) {
	fmt.Fprintln(p.w, strings.Repeat(ch, width))
}

func (p *Printer) title(text string, width int) {
	fmt.Fprintln(p.w)
	p.rule("=", width)
	p.printf("  %s\n", text)
	p.rule("=", width)
}

// Dashboard prints the store-wide summary followed by per-warehouse totals.
func (p *Printer) Dashboard(res *app.DashboardResult) {
	s := res.Summary
	p.title("INVENTORY SUMMARY", 62)
	p.printf("  Items       : %s\n", p.Number(s.TotalItems))
	p.printf("  Low stock   : %s\n", p.Number(s.LowStockCount))
	p.printf("  Stock value : %s\n", p.Money(s.TotalValue))
	p.printf("  Warehouses  : %s\n", p.Number(s.TotalWarehouses))
	p.rule("-", 62)
	p.warehouseRows(res.Warehouses, 62)
}

func (p *Printer) Warehouses(res *app.WarehouseListResult) {
	p.title("WAREHOUSES", 78)
	p.warehouseRows(res.Warehouses, 78)
}

func (p *Printer) warehouseRows(rows []core.WarehouseSummary, width int) {
	if len(rows) == 0 {
		p.printf("  No warehouses found.\n")
		p.rule("=", width)
		return
	}
	if width > 62 {
		p.printf("  %-12s %-22s %-18s %6s %15s\n", "ID", "NAME", "LOCATION", "ITEMS", "VALUE")
		p.rule("-", width)
		for _, r := range rows {
			p.printf("  %-12s %-22s %-18s %6d %15s\n",
				clip(r.Warehouse.ID, 12), clip(r.Warehouse.Name, 22), clip(r.Warehouse.Location, 18),
				r.ItemCount, p.Money(r.TotalValue))
		}
	} else {
		p.printf("  %-30s %6s %20s\n", "WAREHOUSE", "ITEMS", "VALUE")
		for _, r := range rows {
			p.printf("  %-30s %6d %20s\n", clip(r.Warehouse.Name, 30), r.ItemCount, p.Money(r.TotalValue))
		}
	}
	p.rule("=", width)
}

// Items prints the item list. Low-stock rows are flagged with "!".
func (p *Printer) Items(res *app.ItemListResult) {
	p.title("ITEMS", 96)
	if len(res.Items) == 0 {
		p.printf("  No items found.\n")
		p.rule("=", 96)
		return
	}
	p.printf("  %-12s %-22s %-16s %8s %-6s %13s %15s\n", "ID", "NAME", "WAREHOUSE", "STOCK", "UNIT", "PRICE", "VALUE")
	p.rule("-", 96)
	for _, v := range res.Items {
		flag := " "
		if v.LowStock {
			flag = "!"
		}
		p.printf("%s %-12s %-22s %-16s %8s %-6s %13s %15s\n", flag,
			clip(v.ID, 12), clip(v.Name, 22), clip(v.WarehouseName, 16), p.Number(v.Stock),
			clip(v.Unit, 6), p.Money(decimal.NewFromInt(v.Price)), p.Money(v.Value))
	}
	p.rule("=", 96)
	p.printf("  ! = at or below minimum stock\n")
}

// Item prints one item's details.
func (p *Printer) Item(it core.Item) {
	fmt.Fprintln(p.w)
	p.rule("-", 50)
	p.printf("  Item:       %s (%s)\n", it.Name, it.ID)
	p.printf("  Warehouse:  %s\n", it.WarehouseName)
	p.printf("  Stock:      %s %s (min %s)\n", p.Number(it.Stock), it.Unit, p.Number(it.MinStock))
	p.printf("  Price:      %s\n", p.Money(decimal.NewFromInt(it.Price)))
	p.printf("  Updated:    %s\n", it.LastUpdated)
	p.rule("-", 50)
}

// Candidates prints items that can be transferred and where they can go.
func (p *Printer) Candidates(res *app.TransferCandidatesResult) {
	p.title("TRANSFER CANDIDATES", 78)
	if len(res.Candidates) == 0 {
		p.printf("  Nothing to transfer.\n")
		p.rule("=", 78)
		return
	}
	for _, c := range res.Candidates {
		p.printf("  %-12s %-28s %s %s in %s\n",
			clip(c.Item.ID, 12), clip(c.Item.Name, 28), p.Number(c.Item.Stock), c.Item.Unit, c.Item.WarehouseName)
		for _, t := range c.Targets {
			p.printf("      -> %s\n", p.TargetLabel(t))
		}
	}
	p.rule("=", 78)
}

// TargetLabel describes a transfer target, including the merge hint when the
// target already stores an item of the same name.
func (p *Printer) TargetLabel(t core.TransferTarget) string {
	if !t.HasMerge() {
		return fmt.Sprintf("%s (%s)", t.WarehouseName, t.WarehouseID)
	}
	return fmt.Sprintf("%s (%s), merges with existing stock of %s %s",
		t.WarehouseName, t.WarehouseID, p.Number(t.MergeStock), t.MergeUnit)
}

// Transactions prints the history table followed by the statistics line.
func (p *Printer) Transactions(res *app.TransactionListResult) {
	p.title("TRANSACTION HISTORY", 100)
	if len(res.Transactions) == 0 {
		p.printf("  No transactions found.\n")
	} else {
		p.printf("  %-10s %-9s %-22s %12s  %-24s %s\n", "DATE", "TYPE", "ITEM", "QTY", "WHERE", "NOTE")
		p.rule("-", 100)
		for _, t := range res.Transactions {
			p.printf("  %-10s %-9s %-22s %12s  %-24s %s\n",
				t.Date, TypeLabel(t.Type), clip(t.ItemName, 22),
				strings.TrimSpace(p.Number(t.Quantity)+" "+t.Unit),
				clip(where(t), 24), p.movement(t))
		}
	}
	p.rule("=", 100)
	p.Stats(res.Stats)
}

// Stats prints the history counters on one line.
func (p *Printer) Stats(s core.TransactionStats) {
	p.printf("  Total %s | in %s | out %s | transfer %s | today %s\n",
		p.Number(s.Total), p.Number(s.ByType[core.StockIn]), p.Number(s.ByType[core.StockOut]),
		p.Number(s.ByType[core.Transfer]), p.Number(s.Today))
}

func (p *Printer) movement(t core.Transaction) string {
	var parts []string
	if t.OldStock != nil && t.NewStock != nil {
		parts = append(parts, fmt.Sprintf("%s -> %s", p.Number(*t.OldStock), p.Number(*t.NewStock)))
	}
	if t.Note != "" {
		parts = append(parts, t.Note)
	}
	return strings.Join(parts, "  ")
}

func where(t core.Transaction) string {
	if t.Type == core.Transfer && (t.FromWarehouse != "" || t.ToWarehouse != "") {
		return t.FromWarehouse + " -> " + t.ToWarehouse
	}
	return t.WarehouseName
}

// TypeLabel is the short display name of a transaction type.
func TypeLabel(t core.TransactionType) string {
	switch t {
	case core.StockIn:
		return "IN"
	case core.StockOut:
		return "OUT"
	case core.Transfer:
		return "TRANSFER"
	}
	return strings.ToUpper(string(t))
}

func (p *Printer) Adjustment(res *app.StockAdjustmentResult) {
	t := res.Transaction
	p.printf("%s %s %s %s. Stock now %s (was %s).\n",
		TypeLabel(t.Type), p.Number(t.Quantity), t.Unit, res.Item.Name,
		p.Number(res.Item.Stock), p.Number(deref(t.OldStock)))
	if res.Item.IsLowStock() {
		p.printf("Warning: %s is at or below its minimum stock of %s.\n", res.Item.Name, p.Number(res.Item.MinStock))
	}
}

func (p *Printer) Transfer(res *core.TransferResult) {
	t := res.Transaction
	p.printf("Transferred %s %s %s from %s to %s (%s).\n",
		p.Number(t.Quantity), t.Unit, t.ItemName, t.FromWarehouse, t.ToWarehouse, res.Outcome)
	switch res.Outcome {
	case core.TransferMerged:
		p.printf("Merged into existing item %s.\n", res.TargetItemID)
		if res.SourceRemoved {
			p.printf("Source item %s was emptied and removed.\n", res.SourceItemID)
		}
	case core.TransferSplit:
		p.printf("New item %s created at the target.\n", res.TargetItemID)
	}
}

// Preview describes an import awaiting confirmation.
func (p *Printer) Preview(pre *app.ImportPreview) {
	p.printf("Import file (%s) holds %s warehouse(s), %s item(s) and %s transaction(s).\n",
		pre.Format, p.Number(pre.Warehouses), p.Number(pre.Items), p.Number(pre.Transactions))
	if pre.Legacy {
		p.printf("The file uses the older export layout.\n")
	}
	p.printf("Importing REPLACES all current data.\n")
}

func (p *Printer) Export(res *app.ExportResult) {
	if res.Warehouses == 0 && res.Items == 0 {
		p.printf("Exported to %s: %s transaction(s).\n", res.Filename, p.Number(res.Transactions))
		return
	}
	p.printf("Exported to %s: %s warehouse(s), %s item(s), %s transaction(s).\n",
		res.Filename, p.Number(res.Warehouses), p.Number(res.Items), p.Number(res.Transactions))
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// clip shortens s to at most n runes, marking the cut with "~".
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "~"
}
