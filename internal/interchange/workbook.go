package interchange

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"agri-inventory/internal/core"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by WriteWorkbook and ReadWorkbook.
const (
	SheetWarehouses   = "Warehouses"
	SheetItems        = "Items"
	SheetTransactions = "Transactions"
)

var (
	warehouseHeaders   = []string{"ID", "Name", "Location", "Capacity", "Created At"}
	itemHeaders        = []string{"ID", "Name", "Unit", "Stock", "Price", "Min Stock", "Warehouse ID", "Warehouse Name", "Last Updated", "Created At"}
	transactionHeaders = []string{"ID", "Item ID", "Item Name", "Warehouse ID", "Warehouse Name", "Type", "Quantity", "Unit", "Date", "Timestamp", "Note", "Old Stock", "New Stock", "From Warehouse", "To Warehouse"}
)

// WriteWorkbook writes snap as an XLSX workbook with one sheet per collection.
// Instants are written as RFC 3339 text so they survive a round trip exactly.
func WriteWorkbook(w io.Writer, snap core.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"548235"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetWarehouses); err != nil {
		return fmt.Errorf("rename first sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetItems); err != nil {
		return fmt.Errorf("add items sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTransactions); err != nil {
		return fmt.Errorf("add transactions sheet: %w", err)
	}

	warehouseRows := make([][]any, len(snap.Warehouses))
	for i, wh := range snap.Warehouses {
		warehouseRows[i] = []any{wh.ID, wh.Name, wh.Location, wh.Capacity, formatInstant(wh.CreatedAt)}
	}
	itemRows := make([][]any, len(snap.Items))
	for i, it := range snap.Items {
		itemRows[i] = []any{it.ID, it.Name, it.Unit, it.Stock, it.Price, it.MinStock,
			it.WarehouseID, it.WarehouseName, it.LastUpdated, formatInstant(it.CreatedAt)}
	}
	txRows := make([][]any, len(snap.Transactions))
	for i, t := range snap.Transactions {
		txRows[i] = []any{t.ID, t.ItemID, t.ItemName, t.WarehouseID, t.WarehouseName, string(t.Type),
			t.Quantity, t.Unit, t.Date, formatInstant(t.Timestamp), t.Note,
			optionalInt(t.OldStock), optionalInt(t.NewStock), t.FromWarehouse, t.ToWarehouse}
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetWarehouses, warehouseHeaders, warehouseRows},
		{SheetItems, itemHeaders, itemRows},
		{SheetTransactions, transactionHeaders, txRows},
	}
	for _, sh := range sheets {
		if err := writeSheet(f, sh.name, sh.headers, sh.rows, headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return fmt.Errorf("%s column width: %w", sheet, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r+2, err)
		}
	}
	return nil
}

// ReadWorkbook reads a workbook produced by WriteWorkbook. Columns are located
// by header text, so reordered columns are accepted. The Items sheet is required.
func ReadWorkbook(r io.Reader) (*Imported, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrInvalidDocument, err)
	}
	defer f.Close()

	snap := core.Snapshot{
		Warehouses:   []core.Warehouse{},
		Items:        []core.Item{},
		Transactions: []core.Transaction{},
	}

	whRows, err := readSheet(f, SheetWarehouses, false)
	if err != nil {
		return nil, err
	}
	for _, row := range whRows {
		wh := core.Warehouse{ID: row.get("id"), Name: row.get("name"), Location: row.get("location")}
		if wh.Capacity, err = row.intValue("capacity"); err != nil {
			return nil, err
		}
		if wh.CreatedAt, err = row.instant("created at"); err != nil {
			return nil, err
		}
		snap.Warehouses = append(snap.Warehouses, wh)
	}

	itemRows, err := readSheet(f, SheetItems, true)
	if err != nil {
		return nil, err
	}
	for _, row := range itemRows {
		it := core.Item{
			ID:            row.get("id"),
			Name:          row.get("name"),
			Unit:          row.get("unit"),
			WarehouseID:   row.get("warehouse id"),
			WarehouseName: row.get("warehouse name"),
			LastUpdated:   row.get("last updated"),
		}
		if it.Stock, err = row.intValue("stock"); err != nil {
			return nil, err
		}
		price, err := row.intValue("price")
		if err != nil {
			return nil, err
		}
		it.Price = int64(price)
		if it.MinStock, err = row.intValue("min stock"); err != nil {
			return nil, err
		}
		if it.CreatedAt, err = row.instant("created at"); err != nil {
			return nil, err
		}
		snap.Items = append(snap.Items, it)
	}

	txRows, err := readSheet(f, SheetTransactions, false)
	if err != nil {
		return nil, err
	}
	for _, row := range txRows {
		t := core.Transaction{
			ID:            row.get("id"),
			ItemID:        row.get("item id"),
			ItemName:      row.get("item name"),
			WarehouseID:   row.get("warehouse id"),
			WarehouseName: row.get("warehouse name"),
			Type:          core.TransactionType(row.get("type")),
			Unit:          row.get("unit"),
			Date:          row.get("date"),
			Note:          row.get("note"),
			FromWarehouse: row.get("from warehouse"),
			ToWarehouse:   row.get("to warehouse"),
		}
		if t.Quantity, err = row.intValue("quantity"); err != nil {
			return nil, err
		}
		if t.Timestamp, err = row.instant("timestamp"); err != nil {
			return nil, err
		}
		if t.OldStock, err = row.optionalInt("old stock"); err != nil {
			return nil, err
		}
		if t.NewStock, err = row.optionalInt("new stock"); err != nil {
			return nil, err
		}
		snap.Transactions = append(snap.Transactions, t)
	}

	return &Imported{Snapshot: snap}, nil
}

// sheetRow maps lower-cased header text to a cell value.
type sheetRow struct {
	sheet  string
	number int
	cells  map[string]string
}

func (r sheetRow) get(col string) string {
	return r.cells[col]
}

func (r sheetRow) intValue(col string) (int, error) {
	v := r.cells[col]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s row %d: %s %q is not a whole number", ErrInvalidDocument, r.sheet, r.number, col, v)
	}
	return n, nil
}

func (r sheetRow) optionalInt(col string) (*int, error) {
	if r.cells[col] == "" {
		return nil, nil
	}
	n, err := r.intValue(col)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r sheetRow) instant(col string) (time.Time, error) {
	v := r.cells[col]
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s row %d: %s %q is not an RFC 3339 timestamp", ErrInvalidDocument, r.sheet, r.number, col, v)
	}
	return t, nil
}

func readSheet(f *excelize.File, sheet string, required bool) ([]sheetRow, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if idx < 0 {
		if required {
			return nil, fmt.Errorf("%w: workbook has no %s sheet", ErrInvalidDocument, sheet)
		}
		return nil, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s sheet: %v", ErrInvalidDocument, sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]sheetRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		row := sheetRow{sheet: sheet, number: i + 2, cells: make(map[string]string, len(headers))}
		blank := true
		for c, v := range cells {
			if c >= len(headers) {
				break
			}
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			row.cells[headers[c]] = v
		}
		if blank {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func optionalInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
