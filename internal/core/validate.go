package core

import (
	"strings"
	"time"
)

// Validate checks the shape of a warehouse record.
func (w Warehouse) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return validationError("name", w.Name, "warehouse name is required")
	}
	if strings.TrimSpace(w.Location) == "" {
		return validationError("location", w.Location, "warehouse location is required")
	}
	if w.Capacity < 0 {
		return validationError("capacity", w.Capacity, "capacity cannot be negative, got %d", w.Capacity)
	}
	if w.Capacity > MaxStock {
		return validationError("capacity", w.Capacity, "capacity cannot exceed %d, got %d", MaxStock, w.Capacity)
	}
	return nil
}

// Validate checks the shape of an item record. It does not resolve the warehouse reference.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return validationError("name", it.Name, "item name is required")
	}
	if strings.TrimSpace(it.Unit) == "" {
		return validationError("unit", it.Unit, "unit is required")
	}
	if strings.TrimSpace(it.WarehouseID) == "" {
		return validationError("warehouseId", it.WarehouseID, "warehouse is required")
	}
	if it.Stock < 0 {
		return validationError("stock", it.Stock, "stock cannot be negative, got %d", it.Stock)
	}
	if it.Stock > MaxStock {
		return validationError("stock", it.Stock, "stock cannot exceed %d, got %d", MaxStock, it.Stock)
	}
	if it.Price < 0 {
		return validationError("price", it.Price, "price cannot be negative, got %d", it.Price)
	}
	if it.MinStock < 0 {
		return validationError("minStock", it.MinStock, "minimum stock cannot be negative, got %d", it.MinStock)
	}
	if it.MinStock > MaxStock {
		return validationError("minStock", it.MinStock, "minimum stock cannot exceed %d, got %d", MaxStock, it.MinStock)
	}
	return nil
}

// IsValidWarehouse reports whether w passes Validate.
func IsValidWarehouse(w Warehouse) bool {
	return w.Validate() == nil
}

// IsValidItem reports whether it passes Validate and references a warehouse hasWarehouse knows.
func IsValidItem(it Item, hasWarehouse func(id string) bool) bool {
	if it.Validate() != nil {
		return false
	}
	return hasWarehouse != nil && hasWarehouse(it.WarehouseID)
}

func validateTransaction(t Transaction) error {
	if strings.TrimSpace(t.ID) == "" {
		return validationError("id", t.ID, "transaction id is required")
	}
	if !t.Type.Valid() {
		return validationError("type", t.Type, "unknown transaction type %q", t.Type)
	}
	if t.Quantity <= 0 {
		return validationError("quantity", t.Quantity, "transaction %s has non-positive quantity %d", t.ID, t.Quantity)
	}
	if t.Quantity > MaxStock {
		return validationError("quantity", t.Quantity, "transaction %s quantity exceeds %d", t.ID, MaxStock)
	}
	for _, v := range []*int{t.OldStock, t.NewStock} {
		if v != nil && (*v < 0 || *v > MaxStock) {
			return validationError("stock", *v, "transaction %s records stock %d outside 0..%d", t.ID, *v, MaxStock)
		}
	}
	return nil
}

// parseDate validates a user-supplied calendar date.
func parseDate(field, raw string) (string, error) {
	d := strings.TrimSpace(raw)
	if d == "" {
		return "", validationError(field, raw, "%s is required", field)
	}
	if _, err := time.Parse(DateLayout, d); err != nil {
		return "", validationError(field, raw, "%s %q must be in YYYY-MM-DD format", field, raw)
	}
	return d, nil
}

func minStockOrDefault(v int) int {
	if v == 0 {
		return DefaultMinStock
	}
	return v
}
