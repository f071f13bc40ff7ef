package repl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
)

// ask prints label and returns the trimmed answer, or def when the answer is blank.
func (s *session) ask(label, def string) string {
	if def != "" {
		fmt.Fprintf(s.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(s.out, "%s: ", label)
	}
	raw, _ := s.reader.ReadString('\n')
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	return raw
}

// askInt re-prompts until the answer parses as an integer. ok is false when the user types "cancel".
func (s *session) askInt(label string, def int) (n int, ok bool) {
	for {
		raw := s.ask(label, strconv.Itoa(def))
		if strings.EqualFold(raw, "cancel") {
			return 0, false
		}
		v, err := strconv.Atoi(raw)
		if err == nil {
			return v, true
		}
		fmt.Fprintf(s.out, "  %q is not a whole number.\n", raw)
	}
}

func (s *session) confirm(question string) bool {
	fmt.Fprintf(s.out, "%s (y/n): ", question)
	raw, _ := s.reader.ReadString('\n')
	raw = strings.ToLower(strings.TrimSpace(raw))
	return raw == "y" || raw == "yes"
}

func (s *session) addWarehouseWizard() error {
	name := s.ask("Warehouse name", "")
	location := s.ask("Location", "")
	capacity, ok := s.askInt("Capacity (m²)", 0)
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	w, err := s.svc.AddWarehouse(s.ctx, app.AddWarehouseRequest{Name: name, Location: location, Capacity: capacity})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Warehouse %s created (ID: %s).\n", w.Name, w.ID)
	return nil
}

// pickWarehouse lists warehouses and returns the chosen id, or "" when cancelled.
func (s *session) pickWarehouse() (string, error) {
	res, err := s.svc.ListWarehouses(s.ctx)
	if err != nil {
		return "", err
	}
	if len(res.Warehouses) == 0 {
		fmt.Fprintln(s.out, "No warehouses yet. Use /add-warehouse first.")
		return "", nil
	}
	for i, w := range res.Warehouses {
		fmt.Fprintf(s.out, "  %d) %s  (%s)\n", i+1, w.Warehouse.Name, w.Warehouse.Location)
	}
	n, ok := s.askInt("Warehouse #", 1)
	if !ok {
		return "", nil
	}
	if n < 1 || n > len(res.Warehouses) {
		fmt.Fprintln(s.out, "No such warehouse.")
		return "", nil
	}
	return res.Warehouses[n-1].Warehouse.ID, nil
}

func (s *session) addItemWizard() error {
	fmt.Fprintln(s.out, "New item. Type 'cancel' at a number prompt to abort.")
	warehouseID, err := s.pickWarehouse()
	if err != nil || warehouseID == "" {
		return err
	}
	req := app.AddItemRequest{WarehouseID: warehouseID}
	req.Name = s.ask("Name", "")
	req.Unit = s.ask("Unit (kg, sak, liter, pcs)", "kg")

	var ok bool
	if req.Stock, ok = s.askInt("Opening stock", 0); !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	price, ok := s.askInt("Unit price", 0)
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	req.Price = int64(price)
	if req.MinStock, ok = s.askInt("Minimum stock", core.DefaultMinStock); !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}

	it, err := s.svc.AddItem(s.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Item added (ID: %s).\n", it.ID)
	s.view.Item(*it)
	return nil
}

func (s *session) editItemWizard(id string) error {
	cur, err := s.svc.GetItem(s.ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Press Enter to keep the current value.")
	req := app.EditItemRequest{ID: cur.ID}
	req.Name = s.ask("Name", cur.Name)
	req.Unit = s.ask("Unit", cur.Unit)
	price, ok := s.askInt("Unit price", int(cur.Price))
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	req.Price = int64(price)
	if req.MinStock, ok = s.askInt("Minimum stock", cur.MinStock); !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}

	it, err := s.svc.EditItem(s.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Item updated.")
	s.view.Item(*it)
	return nil
}

// transferWizard walks through item, target and quantity. Targets that
// already hold an item of the same name are marked so the merge is expected.
func (s *session) transferWizard() error {
	res, err := s.svc.ListTransferCandidates(s.ctx)
	if err != nil {
		return err
	}
	if len(res.Candidates) == 0 {
		fmt.Fprintln(s.out, "No items with stock to transfer.")
		return nil
	}
	for i, c := range res.Candidates {
		fmt.Fprintf(s.out, "  %d) %s  %d %s in %s\n", i+1, c.Item.Name, c.Item.Stock, c.Item.Unit, c.Item.WarehouseName)
	}
	n, ok := s.askInt("Item #", 1)
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if n < 1 || n > len(res.Candidates) {
		fmt.Fprintln(s.out, "No such item.")
		return nil
	}
	cand := res.Candidates[n-1]
	if len(cand.Targets) == 0 {
		fmt.Fprintln(s.out, "There is no other warehouse to transfer to.")
		return nil
	}

	for i, t := range cand.Targets {
		fmt.Fprintf(s.out, "  %d) %s\n", i+1, s.view.TargetLabel(t))
	}
	n, ok = s.askInt("Target #", 1)
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if n < 1 || n > len(cand.Targets) {
		fmt.Fprintln(s.out, "No such warehouse.")
		return nil
	}
	target := cand.Targets[n-1]

	qty, ok := s.askInt(fmt.Sprintf("Quantity (max %d)", cand.Item.Stock), cand.Item.Stock)
	if !ok {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}

	out, err := s.svc.TransferStock(s.ctx, app.TransferRequest{
		ItemID:            cand.Item.ID,
		TargetWarehouseID: target.WarehouseID,
		Quantity:          qty,
	})
	if err != nil {
		return err
	}
	s.view.Transfer(out)
	return nil
}

func (s *session) importWizard(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	preview, err := s.svc.PreviewImport(s.ctx, f, app.FormatForPath(path))
	if err != nil {
		return err
	}
	s.view.Preview(preview)
	if !s.confirm("Replace all current data with this file?") {
		fmt.Fprintln(s.out, "Import cancelled.")
		return nil
	}
	res, err := s.svc.ImportData(s.ctx, preview)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Imported %d warehouse(s), %d item(s), %d transaction(s).\n", res.Warehouses, res.Items, res.Transactions)
	return nil
}

// clearWizard asks twice; the second answer must be typed out in full.
func (s *session) clearWizard() error {
	fmt.Fprintln(s.out, "This deletes ALL warehouses, items and transaction history.")
	if !s.confirm("Continue?") {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if s.ask("Type DELETE to confirm", "") != "DELETE" {
		fmt.Fprintln(s.out, "Cancelled.")
		return nil
	}
	if err := s.svc.ClearAllData(s.ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "All data cleared.")
	return nil
}

// export handles "/export [json|xlsx] [path]".
func (s *session) export(args []string) error {
	format := app.FormatJSON
	if len(args) > 0 {
		format = app.ImportFormat(strings.ToLower(args[0]))
	}
	var buf bytes.Buffer
	var res *app.ExportResult
	var err error
	switch format {
	case app.FormatJSON:
		res, err = s.svc.ExportData(s.ctx, &buf)
	case app.FormatXLSX:
		res, err = s.svc.ExportWorkbook(s.ctx, &buf)
	default:
		fmt.Fprintln(s.out, "Usage: /export [json|xlsx] [path]")
		return nil
	}
	if err != nil {
		return err
	}
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	if res.Filename, err = s.write(path, res.Filename, buf.Bytes()); err != nil {
		return err
	}
	s.view.Export(res)
	return nil
}

// exportHistory handles "/export-history [type] [path]".
func (s *session) exportHistory(args []string) error {
	filter := core.TransactionFilter{}
	path := ""
	for _, a := range args {
		if t := core.TransactionType(strings.ToLower(a)); t.Valid() {
			filter.Type = t
		} else {
			path = a
		}
	}
	var buf bytes.Buffer
	res, err := s.svc.ExportHistory(s.ctx, &buf, filter)
	if err != nil {
		return err
	}
	if res.Filename, err = s.write(path, res.Filename, buf.Bytes()); err != nil {
		return err
	}
	s.view.Export(res)
	return nil
}

func (s *session) write(path, defaultName string, data []byte) (string, error) {
	if path == "" {
		path = filepath.Join(s.dir, defaultName)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
