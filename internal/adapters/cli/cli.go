package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"agri-inventory/internal/adapters/textview"
	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
)

// ErrUsage is returned for malformed command lines. The usage text has
// already been written to the output.
var ErrUsage = errors.New("invalid usage")

// Options controls where output and exported files go.
type Options struct {
	Out     io.Writer
	Printer *textview.Printer
	// Dir receives export files written without an explicit --out path.
	Dir string
}

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, opts Options) error {
	if len(args) == 0 {
		printUsage(opts.Out)
		return ErrUsage
	}
	r := &runner{ctx: ctx, svc: svc, out: opts.Out, view: opts.Printer, dir: opts.Dir}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "summary", "dash":
		res, err := svc.GetDashboard(ctx)
		if err != nil {
			return err
		}
		r.view.Dashboard(res)

	case "warehouses", "wh":
		res, err := svc.ListWarehouses(ctx)
		if err != nil {
			return err
		}
		r.view.Warehouses(res)

	case "items", "ls":
		return r.items(rest)

	case "candidates":
		res, err := svc.ListTransferCandidates(ctx)
		if err != nil {
			return err
		}
		r.view.Candidates(res)

	case "history":
		return r.history(rest)

	case "stats":
		res, err := svc.ListTransactions(ctx, core.TransactionFilter{})
		if err != nil {
			return err
		}
		r.view.Stats(res.Stats)

	case "add-warehouse":
		return r.addWarehouse(rest)
	case "delete-warehouse":
		return r.deleteByID(rest, "delete-warehouse <warehouse-id>", svc.DeleteWarehouse, "Warehouse %s deleted.\n")
	case "add-item":
		return r.addItem(rest)
	case "edit-item":
		return r.editItem(rest)
	case "delete-item":
		return r.deleteByID(rest, "delete-item <item-id>", svc.DeleteItem, "Item %s deleted.\n")
	case "stock-in", "in":
		return r.adjust(rest, core.StockIn)
	case "stock-out", "out":
		return r.adjust(rest, core.StockOut)
	case "transfer", "mv":
		return r.transfer(rest)
	case "export":
		return r.export(rest)
	case "export-history":
		return r.exportHistory(rest)
	case "import":
		return r.importFile(rest)
	case "clear":
		return r.clear(rest)

	case "help", "-h", "--help":
		printUsage(opts.Out)

	default:
		fmt.Fprintf(opts.Out, "Unknown command: %s\n", cmd)
		printUsage(opts.Out)
		return ErrUsage
	}
	return nil
}

type runner struct {
	ctx  context.Context
	svc  app.ApplicationService
	out  io.Writer
	view *textview.Printer
	dir  string
}

func (r *runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.out)
	return fs
}

// parseArgs parses flags that may appear before, between or after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, ErrUsage
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (r *runner) usage(text string) error {
	fmt.Fprintf(r.out, "Usage: app %s\n", text)
	return ErrUsage
}

func (r *runner) items(args []string) error {
	fs := r.flags("items")
	warehouse := fs.String("warehouse", "", "only items in this warehouse id")
	search := fs.String("search", "", "case-insensitive text search")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	res, err := r.svc.ListItems(r.ctx, core.ItemFilter{WarehouseID: *warehouse, Search: *search})
	if err != nil {
		return err
	}
	r.view.Items(res)
	return nil
}

func historyFlags(fs *flag.FlagSet) func() core.TransactionFilter {
	text := fs.String("search", "", "match item name or note text")
	typ := fs.String("type", "", "stock-in, stock-out or transfer")
	date := fs.String("date", "", "YYYY-MM-DD")
	return func() core.TransactionFilter {
		return core.TransactionFilter{Text: *text, Type: core.TransactionType(*typ), Date: *date}
	}
}

func (r *runner) history(args []string) error {
	fs := r.flags("history")
	filter := historyFlags(fs)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	res, err := r.svc.ListTransactions(r.ctx, filter())
	if err != nil {
		return err
	}
	r.view.Transactions(res)
	return nil
}

func (r *runner) addWarehouse(args []string) error {
	fs := r.flags("add-warehouse")
	name := fs.String("name", "", "warehouse name (required)")
	location := fs.String("location", "", "address or description (required)")
	capacity := fs.Int("capacity", 0, "area in m²")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	w, err := r.svc.AddWarehouse(r.ctx, app.AddWarehouseRequest{Name: *name, Location: *location, Capacity: *capacity})
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Warehouse %s created (ID: %s).\n", w.Name, w.ID)
	return nil
}

func (r *runner) deleteByID(args []string, usage string, del func(context.Context, string) error, done string) error {
	if len(args) != 1 {
		return r.usage(usage)
	}
	if err := del(r.ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(r.out, done, args[0])
	return nil
}

func (r *runner) addItem(args []string) error {
	fs := r.flags("add-item")
	var req app.AddItemRequest
	fs.StringVar(&req.Name, "name", "", "item name (required)")
	fs.StringVar(&req.Unit, "unit", "", "unit of measure, e.g. kg (required)")
	fs.IntVar(&req.Stock, "stock", 0, "opening stock")
	fs.Int64Var(&req.Price, "price", 0, "unit price")
	fs.IntVar(&req.MinStock, "min-stock", 0, "reorder threshold (default 10)")
	fs.StringVar(&req.WarehouseID, "warehouse", "", "warehouse id (required)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	it, err := r.svc.AddItem(r.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Item %s added (ID: %s).\n", it.Name, it.ID)
	r.view.Item(*it)
	return nil
}

// editItem starts from the current values so only the given flags change.
func (r *runner) editItem(args []string) error {
	fs := r.flags("edit-item")
	name := fs.String("name", "", "new name")
	unit := fs.String("unit", "", "new unit")
	price := fs.Int64("price", 0, "new unit price")
	minStock := fs.Int("min-stock", 0, "new reorder threshold")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return r.usage("edit-item <item-id> [--name N] [--unit U] [--price P] [--min-stock M]")
	}

	cur, err := r.svc.GetItem(r.ctx, pos[0])
	if err != nil {
		return err
	}
	req := app.EditItemRequest{ID: cur.ID, Name: cur.Name, Unit: cur.Unit, Price: cur.Price, MinStock: cur.MinStock}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			req.Name = *name
		case "unit":
			req.Unit = *unit
		case "price":
			req.Price = *price
		case "min-stock":
			req.MinStock = *minStock
		}
	})

	it, err := r.svc.EditItem(r.ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, "Item updated.")
	r.view.Item(*it)
	return nil
}

func (r *runner) adjust(args []string, typ core.TransactionType) error {
	fs := r.flags(string(typ))
	date := fs.String("date", "", "transaction date YYYY-MM-DD (default today)")
	note := fs.String("note", "", "free-text note")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return r.usage(string(typ) + " <item-id> <quantity> [--date YYYY-MM-DD] [--note TEXT]")
	}
	qty, err := strconv.Atoi(pos[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", pos[1])
	}
	res, err := r.svc.AdjustStock(r.ctx, app.AdjustStockRequest{
		ItemID:   pos[0],
		Type:     typ,
		Quantity: qty,
		Date:     *date,
		Note:     *note,
	})
	if err != nil {
		return err
	}
	r.view.Adjustment(res)
	return nil
}

func (r *runner) transfer(args []string) error {
	if len(args) != 3 {
		return r.usage("transfer <item-id> <target-warehouse-id> <quantity>")
	}
	qty, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[2])
	}
	res, err := r.svc.TransferStock(r.ctx, app.TransferRequest{ItemID: args[0], TargetWarehouseID: args[1], Quantity: qty})
	if err != nil {
		return err
	}
	r.view.Transfer(res)
	return nil
}

func (r *runner) export(args []string) error {
	fs := r.flags("export")
	format := fs.String("format", "json", "json or xlsx")
	out := fs.String("out", "", "output path (default: dated file name)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}

	var buf bytes.Buffer
	var res *app.ExportResult
	var err error
	switch app.ImportFormat(strings.ToLower(*format)) {
	case app.FormatJSON:
		res, err = r.svc.ExportData(r.ctx, &buf)
	case app.FormatXLSX:
		res, err = r.svc.ExportWorkbook(r.ctx, &buf)
	default:
		return r.usage("export [--format json|xlsx] [--out PATH]")
	}
	if err != nil {
		return err
	}
	if res.Filename, err = r.writeFile(*out, res.Filename, buf.Bytes()); err != nil {
		return err
	}
	r.view.Export(res)
	return nil
}

func (r *runner) exportHistory(args []string) error {
	fs := r.flags("export-history")
	filter := historyFlags(fs)
	out := fs.String("out", "", "output path (default: dated file name)")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	var buf bytes.Buffer
	res, err := r.svc.ExportHistory(r.ctx, &buf, filter())
	if err != nil {
		return err
	}
	if res.Filename, err = r.writeFile(*out, res.Filename, buf.Bytes()); err != nil {
		return err
	}
	r.view.Export(res)
	return nil
}

func (r *runner) writeFile(path, defaultName string, data []byte) (string, error) {
	if path == "" {
		path = filepath.Join(r.dir, defaultName)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

func (r *runner) importFile(args []string) error {
	fs := r.flags("import")
	yes := fs.Bool("yes", false, "confirm replacing all current data")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return r.usage("import <file.json|file.xlsx> --yes")
	}

	f, err := os.Open(pos[0])
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	preview, err := r.svc.PreviewImport(r.ctx, f, app.FormatForPath(pos[0]))
	if err != nil {
		return err
	}
	r.view.Preview(preview)
	if !*yes {
		fmt.Fprintln(r.out, "Nothing changed. Re-run with --yes to import.")
		return nil
	}

	res, err := r.svc.ImportData(r.ctx, preview)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Imported %d warehouse(s), %d item(s), %d transaction(s).\n", res.Warehouses, res.Items, res.Transactions)
	if !res.Saved {
		fmt.Fprintln(r.out, "Warning: the import could not be saved yet; it will be retried.")
	}
	return nil
}

func (r *runner) clear(args []string) error {
	fs := r.flags("clear")
	yes := fs.Bool("yes", false, "confirm deleting ALL warehouses, items and history")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	if !*yes {
		fmt.Fprintln(r.out, "This deletes ALL warehouses, items and transaction history. Re-run with --yes to proceed.")
		return nil
	}
	if err := r.svc.ClearAllData(r.ctx); err != nil {
		return err
	}
	fmt.Fprintln(r.out, "All data cleared.")
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: app <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  summary                                   Dashboard totals")
	fmt.Fprintln(w, "  warehouses                                List warehouses")
	fmt.Fprintln(w, "  items [--warehouse ID] [--search TEXT]    List items")
	fmt.Fprintln(w, "  candidates                                Items that can be transferred")
	fmt.Fprintln(w, "  history [--type T] [--date D] [--search]  Transaction history")
	fmt.Fprintln(w, "  stats                                     History counters")
	fmt.Fprintln(w, "  add-warehouse --name N --location L [--capacity C]")
	fmt.Fprintln(w, "  delete-warehouse <warehouse-id>")
	fmt.Fprintln(w, "  add-item --name N --unit U --warehouse ID [--stock S] [--price P] [--min-stock M]")
	fmt.Fprintln(w, "  edit-item <item-id> [--name N] [--unit U] [--price P] [--min-stock M]")
	fmt.Fprintln(w, "  delete-item <item-id>")
	fmt.Fprintln(w, "  stock-in  <item-id> <qty> [--date D] [--note TEXT]")
	fmt.Fprintln(w, "  stock-out <item-id> <qty> [--date D] [--note TEXT]")
	fmt.Fprintln(w, "  transfer <item-id> <target-warehouse-id> <qty>")
	fmt.Fprintln(w, "  export [--format json|xlsx] [--out PATH]")
	fmt.Fprintln(w, "  export-history [--type T] [--date D] [--search TEXT] [--out PATH]")
	fmt.Fprintln(w, "  import <file> --yes                       Replace all data from an export")
	fmt.Fprintln(w, "  clear --yes                               Delete all data")
}
