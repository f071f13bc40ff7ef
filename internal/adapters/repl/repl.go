package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"agri-inventory/internal/adapters/textview"
	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
)

// Options controls where the session writes.
type Options struct {
	Out     io.Writer
	Printer *textview.Printer
	// Dir receives export files written without an explicit path.
	Dir string
}

var errExit = errors.New("exit")

type session struct {
	ctx    context.Context
	svc    app.ApplicationService
	reader *bufio.Reader
	out    io.Writer
	view   *textview.Printer
	dir    string
}

// Run starts the interactive REPL loop.
// Slash commands are dispatched to the service; any other input is treated
// as an item search. Run returns when the reader is exhausted or on /exit.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, opts Options) {
	s := &session{ctx: ctx, svc: svc, reader: reader, out: opts.Out, view: opts.Printer, dir: opts.Dir}

	printBanner(s.out)
	if dash, err := svc.GetDashboard(ctx); err == nil {
		s.view.Dashboard(dash)
	}

	for {
		fmt.Fprint(s.out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				fmt.Fprintln(s.out)
				return
			}
			continue
		}

		var err error
		if strings.HasPrefix(input, "/") {
			err = s.dispatch(input)
		} else {
			err = s.listItems(core.ItemFilter{Search: input})
		}
		if errors.Is(err, errExit) {
			fmt.Fprintln(s.out, "Goodbye!")
			return
		}
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if readErr != nil {
			return
		}
	}
}

func (s *session) dispatch(input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "summary", "dash", "s":
		res, err := s.svc.GetDashboard(s.ctx)
		if err != nil {
			return err
		}
		s.view.Dashboard(res)

	case "warehouses", "wh":
		res, err := s.svc.ListWarehouses(s.ctx)
		if err != nil {
			return err
		}
		s.view.Warehouses(res)

	case "items", "ls":
		return s.listItems(core.ItemFilter{Search: strings.Join(args, " ")})

	case "stock-at":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: /stock-at <warehouse-id>")
			return nil
		}
		return s.listItems(core.ItemFilter{WarehouseID: args[0]})

	case "item":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: /item <item-id>")
			return nil
		}
		it, err := s.svc.GetItem(s.ctx, args[0])
		if err != nil {
			return err
		}
		s.view.Item(*it)

	case "add-warehouse":
		return s.addWarehouseWizard()

	case "delete-warehouse":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: /delete-warehouse <warehouse-id>")
			return nil
		}
		if !s.confirm(fmt.Sprintf("Delete warehouse %s?", args[0])) {
			fmt.Fprintln(s.out, "Cancelled.")
			return nil
		}
		if err := s.svc.DeleteWarehouse(s.ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Warehouse deleted.")

	case "add-item":
		return s.addItemWizard()

	case "edit-item":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: /edit-item <item-id>")
			return nil
		}
		return s.editItemWizard(args[0])

	case "delete-item":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: /delete-item <item-id>")
			return nil
		}
		it, err := s.svc.GetItem(s.ctx, args[0])
		if err != nil {
			return err
		}
		if !s.confirm(fmt.Sprintf("Delete %s (%d %s in %s)?", it.Name, it.Stock, it.Unit, it.WarehouseName)) {
			fmt.Fprintln(s.out, "Cancelled.")
			return nil
		}
		if err := s.svc.DeleteItem(s.ctx, it.ID); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Item deleted.")

	case "in", "out":
		// Usage: /in <item-id> <qty> [note...]
		if len(args) < 2 {
			fmt.Fprintf(s.out, "Usage: /%s <item-id> <qty> [note]\n", cmd)
			return nil
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.out, "Invalid quantity: %s\n", args[1])
			return nil
		}
		typ := core.StockIn
		if cmd == "out" {
			typ = core.StockOut
		}
		res, err := s.svc.AdjustStock(s.ctx, app.AdjustStockRequest{
			ItemID:   args[0],
			Type:     typ,
			Quantity: qty,
			Note:     strings.Join(args[2:], " "),
		})
		if err != nil {
			return err
		}
		s.view.Adjustment(res)

	case "transfer", "mv":
		return s.transferWizard()

	case "history", "hist":
		filter := core.TransactionFilter{}
		if len(args) > 0 {
			filter.Type = core.TransactionType(strings.ToLower(args[0]))
		}
		if len(args) > 1 {
			filter.Date = args[1]
		}
		res, err := s.svc.ListTransactions(s.ctx, filter)
		if err != nil {
			return err
		}
		s.view.Transactions(res)

	case "stats":
		res, err := s.svc.ListTransactions(s.ctx, core.TransactionFilter{})
		if err != nil {
			return err
		}
		s.view.Stats(res.Stats)

	case "export":
		return s.export(args)

	case "export-history":
		return s.exportHistory(args)

	case "import":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "Usage: /import <file.json|file.xlsx>")
			return nil
		}
		return s.importWizard(args[0])

	case "clear":
		return s.clearWizard()

	case "save":
		if err := s.svc.Save(s.ctx); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Saved.")

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "e", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func (s *session) listItems(filter core.ItemFilter) error {
	res, err := s.svc.ListItems(s.ctx, filter)
	if err != nil {
		return err
	}
	s.view.Items(res)
	return nil
}
