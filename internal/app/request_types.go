package app

import (
	"path/filepath"
	"strings"

	"agri-inventory/internal/core"
)

// AddWarehouseRequest is the input for creating a warehouse.
type AddWarehouseRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
}

// AddItemRequest is the input for creating an item.
type AddItemRequest struct {
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Stock       int    `json:"stock"`
	Price       int64  `json:"price"`
	MinStock    int    `json:"minStock"` // zero means "use the default"
	WarehouseID string `json:"warehouseId"`
}

// EditItemRequest is the input for updating an item's descriptive fields.
type EditItemRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Price    int64  `json:"price"`
	MinStock int    `json:"minStock"`
}

// AdjustStockRequest is the input for a stock-in or stock-out.
// An empty Date means today.
type AdjustStockRequest struct {
	ItemID   string               `json:"itemId"`
	Type     core.TransactionType `json:"type"`
	Quantity int                  `json:"quantity"`
	Date     string               `json:"date"`
	Note     string               `json:"note"`
}

// TransferRequest is the input for moving stock to another warehouse.
type TransferRequest struct {
	ItemID            string `json:"itemId"`
	TargetWarehouseID string `json:"targetWarehouseId"`
	Quantity          int    `json:"quantity"`
}

// ImportFormat selects the decoder used by PreviewImport.
type ImportFormat string

const (
	FormatJSON ImportFormat = "json"
	FormatXLSX ImportFormat = "xlsx"
)

// FormatForPath picks the import format from a file name's extension.
// Anything other than .xlsx is read as JSON.
func FormatForPath(path string) ImportFormat {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatJSON
}
