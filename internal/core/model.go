package core

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used for transaction dates and Item.LastUpdated.
const DateLayout = "2006-01-02"

// DefaultMinStock is the reorder threshold applied when an item is created or edited without one.
const DefaultMinStock = 10

// MaxStock bounds every stock level, quantity, minimum stock and capacity. It
// matches the INT columns of the Postgres schema.
const MaxStock = math.MaxInt32

type TransactionType string

const (
	StockIn  TransactionType = "stock-in"
	StockOut TransactionType = "stock-out"
	Transfer TransactionType = "transfer"
)

// Valid reports whether t is one of the three known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case StockIn, StockOut, Transfer:
		return true
	}
	return false
}

// Warehouse represents a physical storage location of the store.
type Warehouse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"` // area units (m²)
	CreatedAt time.Time `json:"createdAt"`
}

// Item is a stocked product bound to exactly one warehouse.
// WarehouseName is a snapshot of the warehouse name taken when the item was bound.
type Item struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	Stock         int       `json:"stock"`
	Price         int64     `json:"price"`
	MinStock      int       `json:"minStock"`
	WarehouseID   string    `json:"warehouseId"`
	WarehouseName string    `json:"warehouseName"`
	LastUpdated   string    `json:"lastUpdated"`
	CreatedAt     time.Time `json:"createdAt"`
}

// IsLowStock reports whether the item has reached its reorder threshold.
func (it Item) IsLowStock() bool {
	return it.Stock <= it.MinStock
}

// Value is stock × price.
func (it Item) Value() decimal.Decimal {
	return decimal.NewFromInt(int64(it.Stock)).Mul(decimal.NewFromInt(it.Price))
}

// Transaction is an append-only record of a stock movement.
// Item, warehouse and unit fields are snapshots so history still renders after deletions.
// OldStock/NewStock are set for stock-in and stock-out; FromWarehouse/ToWarehouse for transfers.
type Transaction struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"itemId"`
	ItemName      string          `json:"itemName"`
	WarehouseID   string          `json:"warehouseId,omitempty"`
	WarehouseName string          `json:"warehouseName,omitempty"`
	Type          TransactionType `json:"type"`
	Quantity      int             `json:"quantity"`
	Unit          string          `json:"unit,omitempty"`
	Date          string          `json:"date"`
	Timestamp     time.Time       `json:"timestamp"`
	Note          string          `json:"note,omitempty"`
	OldStock      *int            `json:"oldStock,omitempty"`
	NewStock      *int            `json:"newStock,omitempty"`
	FromWarehouse string          `json:"fromWarehouse,omitempty"`
	ToWarehouse   string          `json:"toWarehouse,omitempty"`
}

// Snapshot is the full ledger state, used for persistence and interchange.
type Snapshot struct {
	Warehouses   []Warehouse   `json:"warehouses"`
	Items        []Item        `json:"items"`
	Transactions []Transaction `json:"transactions"`
}

// NewItem is the input for Ledger.AddItem. A zero MinStock means DefaultMinStock.
type NewItem struct {
	Name        string
	Unit        string
	Stock       int
	Price       int64
	MinStock    int
	WarehouseID string
}

// ItemUpdate is the input for Ledger.EditItem. A zero MinStock means DefaultMinStock.
type ItemUpdate struct {
	Name     string
	Unit     string
	Price    int64
	MinStock int
}

// Adjustment is the input for Ledger.AdjustStock.
type Adjustment struct {
	ItemID   string
	Type     TransactionType
	Quantity int
	Date     string
	Note     string
}

// TransferOutcome names the branch a transfer took.
type TransferOutcome string

const (
	// TransferMerged: a same-named item already existed at the target and absorbed the quantity.
	TransferMerged TransferOutcome = "merged"
	// TransferMoved: the full stock moved, so the source record was re-pointed (same id).
	TransferMoved TransferOutcome = "moved"
	// TransferSplit: part of the stock moved into a new record with a fresh id.
	TransferSplit TransferOutcome = "split"
)

// TransferResult describes a completed transfer.
type TransferResult struct {
	Outcome       TransferOutcome `json:"outcome"`
	SourceItemID  string          `json:"sourceItemId"`
	SourceRemoved bool            `json:"sourceRemoved"`
	TargetItemID  string          `json:"targetItemId"`
	Transaction   Transaction     `json:"transaction"`
}

func intPtr(v int) *int {
	return &v
}
