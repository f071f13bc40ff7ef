package repl

import (
	"fmt"
	"io"
	"strings"
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "Agricultural Supply Store Inventory")
	fmt.Fprintln(w, "Type /help for commands. Plain text searches items.")
	fmt.Fprintln(w, strings.Repeat("-", 70))
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "INVENTORY COMMANDS")
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  OVERVIEW")
	fmt.Fprintln(w, "  /summary                         Dashboard totals")
	fmt.Fprintln(w, "  /warehouses                      Warehouses with item count and value")
	fmt.Fprintln(w, "  /items [text]                    List items, optionally filtered")
	fmt.Fprintln(w, "  /stock-at <warehouse-id>         Items stored in one warehouse")
	fmt.Fprintln(w, "  /item <item-id>                  Item details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  MASTER DATA")
	fmt.Fprintln(w, "  /add-warehouse                   Create a warehouse (interactive)")
	fmt.Fprintln(w, "  /delete-warehouse <id>           Delete an empty warehouse")
	fmt.Fprintln(w, "  /add-item                        Create an item (interactive)")
	fmt.Fprintln(w, "  /edit-item <id>                  Edit name, unit, price, minimum")
	fmt.Fprintln(w, "  /delete-item <id>                Delete an item")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  STOCK")
	fmt.Fprintln(w, "  /in  <item-id> <qty> [note]      Stock in, dated today")
	fmt.Fprintln(w, "  /out <item-id> <qty> [note]      Stock out, dated today")
	fmt.Fprintln(w, "  /transfer                        Move stock between warehouses (interactive)")
	fmt.Fprintln(w, "  /history [type] [date]           Transaction history, newest first")
	fmt.Fprintln(w, "  /stats                           History counters")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  DATA")
	fmt.Fprintln(w, "  /export [json|xlsx] [path]       Export everything")
	fmt.Fprintln(w, "  /export-history [type] [path]    Export transaction history")
	fmt.Fprintln(w, "  /import <file>                   Replace all data from an export")
	fmt.Fprintln(w, "  /clear                           Delete all data (asks twice)")
	fmt.Fprintln(w, "  /save                            Save now")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SESSION")
	fmt.Fprintln(w, "  /help                            Show this help")
	fmt.Fprintln(w, "  /exit                            Exit")
	fmt.Fprintln(w, strings.Repeat("=", 62))
}
