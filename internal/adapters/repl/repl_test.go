package repl_test

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"agri-inventory/internal/adapters/repl"
	"agri-inventory/internal/adapters/textview"
	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
	"agri-inventory/internal/store"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newService(t *testing.T) app.ApplicationService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc := app.NewAppService(store.NewMemoryStore(), app.Options{
		IDs:    core.NewSequenceGenerator("id"),
		Clock:  core.ClockFunc(func() time.Time { return time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC) }),
		Logger: logger,
		DefaultWarehouse: app.AddWarehouseRequest{
			Name: "Gudang Utama", Location: "Lokasi Default", Capacity: 100,
		},
	})
	_, err := svc.Load(context.Background())
	require.NoError(t, err)
	return svc
}

// session feeds the given lines to a REPL and returns everything it printed.
func session(t *testing.T, svc app.ApplicationService, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
	repl.Run(context.Background(), svc, in, repl.Options{
		Out:     &out,
		Printer: textview.New(&out, language.Indonesian, "Rp"),
		Dir:     t.TempDir(),
	})
	return out.String()
}

func TestAddItemWizardAndStockCommands(t *testing.T) {
	svc := newService(t)
	out := session(t, svc,
		"/add-item",
		"1",    // warehouse #
		"Urea", // name
		"kg",   // unit
		"40",   // opening stock
		"2500", // price
		"",     // minimum stock, default
		"/out id-0002 15 sold to Pak Budi",
		"/in id-0002 x",
		"/exit",
	)

	assert.Contains(t, out, "Item added (ID: id-0002).")
	assert.Contains(t, out, "OUT 15 kg Urea. Stock now 25 (was 40).")
	assert.Contains(t, out, "Invalid quantity: x")
	assert.Contains(t, out, "Goodbye!")

	it, err := svc.GetItem(context.Background(), "id-0002")
	require.NoError(t, err)
	assert.Equal(t, 25, it.Stock)
	assert.Equal(t, core.DefaultMinStock, it.MinStock)

	hist, err := svc.ListTransactions(context.Background(), core.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, hist.Transactions, 1)
	assert.Equal(t, "sold to Pak Budi", hist.Transactions[0].Note)
	assert.Equal(t, "2024-05-10", hist.Transactions[0].Date)
}

func TestTransferWizardShowsMergeHint(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	whs, err := svc.ListWarehouses(ctx)
	require.NoError(t, err)
	a := whs.Warehouses[0].Warehouse.ID
	b, err := svc.AddWarehouse(ctx, app.AddWarehouseRequest{Name: "Gudang Timur", Location: "Blok C"})
	require.NoError(t, err)
	src, err := svc.AddItem(ctx, app.AddItemRequest{Name: "Urea", Unit: "kg", Stock: 30, WarehouseID: a})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, app.AddItemRequest{Name: "Urea", Unit: "kg", Stock: 1200, WarehouseID: b.ID})
	require.NoError(t, err)

	out := session(t, svc,
		"/transfer",
		"", // same names sort by id, so the Gudang Utama record comes first
		"1",
		"10",
	)

	assert.Contains(t, out, "merges with existing stock of 1.200 kg")
	assert.Contains(t, out, "(merged)")

	it, err := svc.GetItem(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, it.Stock)
}

func TestClearNeedsBothConfirmations(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	out := session(t, svc, "/clear", "y", "delete")
	assert.Contains(t, out, "Cancelled.")
	dash, err := svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Summary.TotalWarehouses)

	out = session(t, svc, "/clear", "y", "DELETE")
	assert.Contains(t, out, "All data cleared.")
	dash, err = svc.GetDashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, dash.Summary.TotalWarehouses)
}

func TestPlainTextSearchesItems(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	whs, err := svc.ListWarehouses(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, app.AddItemRequest{Name: "Benih Jagung", Unit: "sak", Stock: 9, WarehouseID: whs.Warehouses[0].Warehouse.ID})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, app.AddItemRequest{Name: "Cangkul", Unit: "pcs", Stock: 20, WarehouseID: whs.Warehouses[0].Warehouse.ID})
	require.NoError(t, err)

	out := session(t, svc, "jagung")
	i := strings.LastIndex(out, "ITEMS")
	require.GreaterOrEqual(t, i, 0)
	results := out[i:]
	assert.Contains(t, results, "Benih Jagung")
	assert.NotContains(t, results, "Cangkul")
}

func TestErrorsAreReportedAndLoopContinues(t *testing.T) {
	out := session(t, newService(t),
		"/delete-item ghost",
		"/frobnicate",
		"/help",
	)
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "Unknown command: /frobnicate")
	assert.Contains(t, out, "INVENTORY COMMANDS")
}
