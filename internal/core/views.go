package core

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Summary is the dashboard roll-up over all items.
type Summary struct {
	TotalItems      int             `json:"totalItems"`
	LowStockCount   int             `json:"lowStockCount"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	TotalWarehouses int             `json:"totalWarehouses"`
}

// WarehouseSummary rolls up the items stored in one warehouse.
type WarehouseSummary struct {
	Warehouse  Warehouse       `json:"warehouse"`
	ItemCount  int             `json:"itemCount"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// ItemFilter restricts ListItems. Empty fields match everything.
type ItemFilter struct {
	WarehouseID string
	Search      string
}

// ItemView is an item annotated for display.
type ItemView struct {
	Item
	LowStock bool            `json:"lowStock"`
	Value    decimal.Decimal `json:"value"`
}

// TransferTarget is a warehouse an item may be moved to. When the warehouse
// already stores an item of the same name, MergeItemID and friends describe it.
type TransferTarget struct {
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName"`
	MergeItemID   string `json:"mergeItemId,omitempty"`
	MergeStock    int    `json:"mergeStock,omitempty"`
	MergeUnit     string `json:"mergeUnit,omitempty"`
}

// HasMerge reports whether moving into this target would merge into an existing item.
func (t TransferTarget) HasMerge() bool {
	return t.MergeItemID != ""
}

// TransferCandidate is an item with stock that can be moved, with its eligible targets.
type TransferCandidate struct {
	Item    Item             `json:"item"`
	Targets []TransferTarget `json:"targets"`
}

// TransactionFilter restricts ListTransactions. Empty fields match everything.
type TransactionFilter struct {
	Text string
	Type TransactionType
	Date string
}

// TransactionStats counts the history log.
type TransactionStats struct {
	Total  int                     `json:"total"`
	ByType map[TransactionType]int `json:"byType"`
	Today  int                     `json:"today"`
}

func (l *Ledger) Summary() Summary {
	s := Summary{
		TotalItems:      len(l.items),
		TotalValue:      decimal.Zero,
		TotalWarehouses: len(l.warehouses),
	}
	for _, it := range l.items {
		if it.IsLowStock() {
			s.LowStockCount++
		}
		s.TotalValue = s.TotalValue.Add(it.Value())
	}
	return s
}

// WarehouseSummaries returns one row per warehouse in creation order.
func (l *Ledger) WarehouseSummaries() []WarehouseSummary {
	out := make([]WarehouseSummary, 0, len(l.warehouses))
	for _, w := range l.warehouses {
		row := WarehouseSummary{Warehouse: w, TotalValue: decimal.Zero}
		for _, it := range l.items {
			if it.WarehouseID != w.ID {
				continue
			}
			row.ItemCount++
			row.TotalValue = row.TotalValue.Add(it.Value())
		}
		out = append(out, row)
	}
	return out
}

// ListItems returns items sorted by name under the ledger's collation. Search is
// a case-insensitive substring match on name, unit or warehouse name.
func (l *Ledger) ListItems(f ItemFilter) []ItemView {
	wid := strings.TrimSpace(f.WarehouseID)
	needle := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]ItemView, 0, len(l.items))
	for _, it := range l.items {
		if wid != "" && it.WarehouseID != wid {
			continue
		}
		if needle != "" && !containsFold(needle, it.Name, it.Unit, it.WarehouseName) {
			continue
		}
		out = append(out, ItemView{Item: it, LowStock: it.IsLowStock(), Value: it.Value()})
	}
	slices.SortStableFunc(out, func(a, b ItemView) int {
		return l.compareItems(a.Item, b.Item)
	})
	return out
}

// ListTransferCandidates returns every item with stock, sorted by name, with
// all warehouses other than its own as targets.
func (l *Ledger) ListTransferCandidates() []TransferCandidate {
	var items []Item
	for _, it := range l.items {
		if it.Stock > 0 {
			items = append(items, it)
		}
	}
	slices.SortStableFunc(items, l.compareItems)

	out := make([]TransferCandidate, 0, len(items))
	for _, it := range items {
		c := TransferCandidate{Item: it, Targets: make([]TransferTarget, 0, len(l.warehouses))}
		for _, w := range l.warehouses {
			if w.ID == it.WarehouseID {
				continue
			}
			t := TransferTarget{WarehouseID: w.ID, WarehouseName: w.Name}
			if mi := l.itemByName(w.ID, it.Name); mi >= 0 {
				m := l.items[mi]
				t.MergeItemID, t.MergeStock, t.MergeUnit = m.ID, m.Stock, m.Unit
			}
			c.Targets = append(c.Targets, t)
		}
		out = append(out, c)
	}
	return out
}

// ListTransactions returns matching transactions, newest date first and, within
// a date, newest timestamp first.
func (l *Ledger) ListTransactions(f TransactionFilter) []Transaction {
	needle := strings.ToLower(strings.TrimSpace(f.Text))
	date := strings.TrimSpace(f.Date)

	out := make([]Transaction, 0)
	for _, t := range l.transactions {
		if needle != "" && !containsFold(needle, t.ItemName, t.Note) {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if date != "" && t.Date != date {
			continue
		}
		out = append(out, t)
	}
	out = cloneTransactions(out)
	slices.SortStableFunc(out, func(a, b Transaction) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

func (l *Ledger) TransactionStatistics() TransactionStats {
	today := l.today()
	s := TransactionStats{
		Total: len(l.transactions),
		ByType: map[TransactionType]int{
			StockIn:  0,
			StockOut: 0,
			Transfer: 0,
		},
	}
	for _, t := range l.transactions {
		s.ByType[t.Type]++
		if t.Date == today {
			s.Today++
		}
	}
	return s
}

func (l *Ledger) compareItems(a, b Item) int {
	if c := l.collator.CompareString(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func containsFold(lowerNeedle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerNeedle) {
			return true
		}
	}
	return false
}
