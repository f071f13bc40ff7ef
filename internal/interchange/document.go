// Package interchange reads and writes the files a user exchanges with the
// application: the full-data JSON document, the transaction history export and
// an XLSX workbook with one sheet per collection.
package interchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"agri-inventory/internal/core"
)

// File name prefixes for exports.
const (
	DataFilePrefix    = "stok-toko-pertanian"
	HistoryFilePrefix = "riwayat-transaksi"
)

// ErrInvalidDocument is returned when an import file does not have the expected shape.
var ErrInvalidDocument = errors.New("invalid interchange document")

// Document is the full-data export: the snapshot plus metadata.
type Document struct {
	Warehouses        []core.Warehouse   `json:"warehouses"`
	Items             []core.Item        `json:"items"`
	Transactions      []core.Transaction `json:"transactions"`
	ExportDate        time.Time          `json:"exportDate"`
	TotalItems        int                `json:"totalItems"`
	TotalTransactions int                `json:"totalTransactions"`
	TotalWarehouses   int                `json:"totalWarehouses"`
}

func NewDocument(snap core.Snapshot, at time.Time) Document {
	snap = snap.Clone()
	return Document{
		Warehouses:        nonNil(snap.Warehouses),
		Items:             nonNil(snap.Items),
		Transactions:      nonNil(snap.Transactions),
		ExportDate:        at.UTC(),
		TotalItems:        len(snap.Items),
		TotalTransactions: len(snap.Transactions),
		TotalWarehouses:   len(snap.Warehouses),
	}
}

// Snapshot returns the document's collections.
func (d Document) Snapshot() core.Snapshot {
	return core.Snapshot{Warehouses: d.Warehouses, Items: d.Items, Transactions: d.Transactions}
}

// ExportFilename builds names such as stok-toko-pertanian-2024-05-10.json.
func ExportFilename(prefix string, at time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, at.Format(core.DateLayout), strings.TrimPrefix(ext, "."))
}

// WriteJSON encodes v with two-space indentation.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// Imported is a decoded import file, not yet applied to any ledger.
type Imported struct {
	Snapshot   core.Snapshot
	ExportDate time.Time // zero when the file carried none
	Legacy     bool      // items came from the "inventory" key
}

// Counts returns the number of warehouses, items and transactions in the file.
func (im *Imported) Counts() (warehouses, items, transactions int) {
	return im.Snapshot.Counts()
}

// ReadJSON decodes a data document. The items array is required and may be
// given under the older "inventory" key. Identifiers may be strings or
// numbers, and the older transaction type names (masuk, keluar, pindah) are
// mapped to the current ones. Entity validation is left to Ledger.Restore.
func ReadJSON(r io.Reader) (*Imported, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}

	var raw struct {
		Warehouses   []wireWarehouse   `json:"warehouses"`
		Items        json.RawMessage   `json:"items"`
		Inventory    json.RawMessage   `json:"inventory"`
		Transactions []wireTransaction `json:"transactions"`
		ExportDate   string            `json:"exportDate"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	im := &Imported{}
	itemsJSON := raw.Items
	if isAbsent(itemsJSON) {
		itemsJSON = raw.Inventory
		im.Legacy = true
	}
	if isAbsent(itemsJSON) {
		return nil, fmt.Errorf("%w: no item list found", ErrInvalidDocument)
	}
	var items []wireItem
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, fmt.Errorf("%w: item list is not an array of items: %v", ErrInvalidDocument, err)
	}

	snap := core.Snapshot{
		Warehouses:   make([]core.Warehouse, 0, len(raw.Warehouses)),
		Items:        make([]core.Item, 0, len(items)),
		Transactions: make([]core.Transaction, 0, len(raw.Transactions)),
	}
	for _, w := range raw.Warehouses {
		snap.Warehouses = append(snap.Warehouses, w.model())
	}
	for _, it := range items {
		snap.Items = append(snap.Items, it.model())
	}
	for _, t := range raw.Transactions {
		snap.Transactions = append(snap.Transactions, t.model())
	}
	im.Snapshot = snap

	if raw.ExportDate != "" {
		if at, err := time.Parse(time.RFC3339Nano, raw.ExportDate); err == nil {
			im.ExportDate = at
		}
	}
	return im, nil
}

func isAbsent(m json.RawMessage) bool {
	return len(m) == 0 || string(m) == "null"
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// flexID accepts a JSON string or number, since older exports used numeric ids.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number, got %s", b)
	}
	if i, err := n.Int64(); err == nil {
		*id = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = flexID(n.String())
	return nil
}

type wireWarehouse struct {
	ID          flexID    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedDate time.Time `json:"createdDate"` // older exports
}

func (w wireWarehouse) model() core.Warehouse {
	return core.Warehouse{
		ID:        string(w.ID),
		Name:      w.Name,
		Location:  w.Location,
		Capacity:  w.Capacity,
		CreatedAt: firstSet(w.CreatedAt, w.CreatedDate),
	}
}

func firstSet(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	return a
}

type wireItem struct {
	ID            flexID    `json:"id"`
	Name          string    `json:"name"`
	Unit          string    `json:"unit"`
	Stock         int       `json:"stock"`
	Price         int64     `json:"price"`
	MinStock      *int      `json:"minStock"`
	WarehouseID   flexID    `json:"warehouseId"`
	WarehouseName string    `json:"warehouseName"`
	LastUpdated   string    `json:"lastUpdated"`
	CreatedAt     time.Time `json:"createdAt"`
	CreatedDate   time.Time `json:"createdDate"`
}

func (it wireItem) model() core.Item {
	minStock := core.DefaultMinStock
	if it.MinStock != nil {
		minStock = *it.MinStock
	}
	return core.Item{
		ID:            string(it.ID),
		Name:          it.Name,
		Unit:          it.Unit,
		Stock:         it.Stock,
		Price:         it.Price,
		MinStock:      minStock,
		WarehouseID:   string(it.WarehouseID),
		WarehouseName: it.WarehouseName,
		LastUpdated:   it.LastUpdated,
		CreatedAt:     firstSet(it.CreatedAt, it.CreatedDate),
	}
}

type wireTransaction struct {
	ID            flexID    `json:"id"`
	ItemID        flexID    `json:"itemId"`
	ItemName      string    `json:"itemName"`
	WarehouseID   flexID    `json:"warehouseId"`
	WarehouseName string    `json:"warehouseName"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Unit          string    `json:"unit"`
	Date          string    `json:"date"`
	Timestamp     time.Time `json:"timestamp"`
	Note          string    `json:"note"`
	OldStock      *int      `json:"oldStock"`
	NewStock      *int      `json:"newStock"`
	FromWarehouse string    `json:"fromWarehouse"`
	ToWarehouse   string    `json:"toWarehouse"`
}

var legacyTypes = map[string]core.TransactionType{
	"masuk":  core.StockIn,
	"keluar": core.StockOut,
	"pindah": core.Transfer,
}

func (t wireTransaction) model() core.Transaction {
	typ := core.TransactionType(t.Type)
	if mapped, ok := legacyTypes[t.Type]; ok {
		typ = mapped
	}
	return core.Transaction{
		ID:            string(t.ID),
		ItemID:        string(t.ItemID),
		ItemName:      t.ItemName,
		WarehouseID:   string(t.WarehouseID),
		WarehouseName: t.WarehouseName,
		Type:          typ,
		Quantity:      t.Quantity,
		Unit:          t.Unit,
		Date:          t.Date,
		Timestamp:     t.Timestamp,
		Note:          t.Note,
		OldStock:      t.OldStock,
		NewStock:      t.NewStock,
		FromWarehouse: t.FromWarehouse,
		ToWarehouse:   t.ToWarehouse,
	}
}
