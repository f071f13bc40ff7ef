package app

import (
	"time"

	"agri-inventory/internal/core"
	"agri-inventory/internal/interchange"
)

// LoadResult is returned by Load.
type LoadResult struct {
	Seeded       bool // nothing was stored; the default warehouse was created
	Warehouses   int
	Items        int
	Transactions int
}

// DashboardResult is returned by GetDashboard.
type DashboardResult struct {
	Summary    core.Summary            `json:"summary"`
	Warehouses []core.WarehouseSummary `json:"warehouses"`
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.WarehouseSummary `json:"warehouses"`
}

// ItemListResult is returned by ListItems.
type ItemListResult struct {
	Items []core.ItemView `json:"items"`
}

// StockAdjustmentResult is returned by AdjustStock.
type StockAdjustmentResult struct {
	Item        core.Item        `json:"item"`
	Transaction core.Transaction `json:"transaction"`
}

// TransferCandidatesResult is returned by ListTransferCandidates.
type TransferCandidatesResult struct {
	Candidates []core.TransferCandidate `json:"candidates"`
}

// TransactionListResult is returned by ListTransactions.
type TransactionListResult struct {
	Transactions []core.Transaction    `json:"transactions"`
	Stats        core.TransactionStats `json:"stats"`
}

// ExportResult describes a written export.
type ExportResult struct {
	Filename     string    `json:"filename"`
	ExportedAt   time.Time `json:"exportedAt"`
	Warehouses   int       `json:"warehouses"`
	Items        int       `json:"items"`
	Transactions int       `json:"transactions"`
}

// ImportPreview is a decoded and validated import awaiting confirmation.
type ImportPreview struct {
	Format       ImportFormat `json:"format"`
	Warehouses   int          `json:"warehouses"`
	Items        int          `json:"items"`
	Transactions int          `json:"transactions"`
	Legacy       bool         `json:"legacy"`

	imported *interchange.Imported
}

// ImportResult is returned by ImportData.
type ImportResult struct {
	Warehouses   int  `json:"warehouses"`
	Items        int  `json:"items"`
	Transactions int  `json:"transactions"`
	Saved        bool `json:"saved"`
}
