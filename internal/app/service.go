package app

import (
	"context"
	"io"
	"time"

	"agri-inventory/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
//
// Every mutating call persists the full snapshot before returning. A failed
// save is logged and retried by the autosave loop; the mutation itself stands.
type ApplicationService interface {
	// Load replaces the in-memory ledger with the stored snapshot. When nothing
	// has been saved yet the default warehouse is seeded and saved.
	Load(ctx context.Context) (*LoadResult, error)

	// Save writes the current snapshot to the store.
	Save(ctx context.Context) error
	// Flush saves only when an earlier save failed. Call it before exiting.
	Flush(ctx context.Context) error

	// RunAutosave saves every interval while the ledger holds data, until ctx is done.
	RunAutosave(ctx context.Context, interval time.Duration)

	// GetDashboard returns the summary figures and per-warehouse roll-up.
	GetDashboard(ctx context.Context) (*DashboardResult, error)

	// ListWarehouses returns every warehouse with its item count and value.
	ListWarehouses(ctx context.Context) (*WarehouseListResult, error)

	// AddWarehouse creates a warehouse.
	AddWarehouse(ctx context.Context, req AddWarehouseRequest) (*core.Warehouse, error)

	// DeleteWarehouse removes a warehouse that no item references.
	DeleteWarehouse(ctx context.Context, id string) error

	// ListItems returns items sorted by name, optionally restricted.
	ListItems(ctx context.Context, filter core.ItemFilter) (*ItemListResult, error)

	// GetItem returns a single item.
	GetItem(ctx context.Context, id string) (*core.Item, error)

	// AddItem creates an item in an existing warehouse.
	AddItem(ctx context.Context, req AddItemRequest) (*core.Item, error)

	// EditItem updates name, unit, price and reorder threshold.
	EditItem(ctx context.Context, req EditItemRequest) (*core.Item, error)

	// DeleteItem removes an item; its history stays.
	DeleteItem(ctx context.Context, id string) error

	// AdjustStock records a stock-in or stock-out.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockAdjustmentResult, error)

	// ListTransferCandidates returns items that can be moved and where to.
	ListTransferCandidates(ctx context.Context) (*TransferCandidatesResult, error)

	// TransferStock moves stock between warehouses.
	TransferStock(ctx context.Context, req TransferRequest) (*core.TransferResult, error)

	// ListTransactions returns the filtered history with overall statistics.
	ListTransactions(ctx context.Context, filter core.TransactionFilter) (*TransactionListResult, error)

	// ExportData writes the full-data JSON document to w.
	ExportData(ctx context.Context, w io.Writer) (*ExportResult, error)

	// ExportHistory writes the filtered transaction history document to w.
	ExportHistory(ctx context.Context, w io.Writer, filter core.TransactionFilter) (*ExportResult, error)

	// ExportWorkbook writes the full data as an XLSX workbook to w.
	ExportWorkbook(ctx context.Context, w io.Writer) (*ExportResult, error)

	// PreviewImport decodes and validates an import file without applying it.
	PreviewImport(ctx context.Context, r io.Reader, format ImportFormat) (*ImportPreview, error)

	// ImportData replaces all data with a previewed import.
	// Must only be called after explicit user confirmation.
	ImportData(ctx context.Context, preview *ImportPreview) (*ImportResult, error)

	// ClearAllData drops every warehouse, item and transaction and removes the
	// stored snapshot. Must only be called after explicit user confirmation.
	ClearAllData(ctx context.Context) error
}
