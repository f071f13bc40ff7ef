package cli_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"agri-inventory/internal/adapters/cli"
	"agri-inventory/internal/adapters/textview"
	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
	"agri-inventory/internal/store"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type harness struct {
	svc app.ApplicationService
	out *bytes.Buffer
	dir string
	wh  string // id of the seeded warehouse
}

func newHarness(t *testing.T) *harness {
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
	whs, err := svc.ListWarehouses(context.Background())
	require.NoError(t, err)
	return &harness{svc: svc, out: &bytes.Buffer{}, dir: t.TempDir(), wh: whs.Warehouses[0].Warehouse.ID}
}

func (h *harness) run(args ...string) error {
	h.out.Reset()
	return cli.Run(context.Background(), h.svc, args, cli.Options{
		Out:     h.out,
		Printer: textview.New(h.out, language.Indonesian, "Rp"),
		Dir:     h.dir,
	})
}

func TestStockWorkflow(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("add-item", "--name", "Urea", "--unit", "kg", "--stock", "40", "--price", "2500", "--warehouse", h.wh))
	assert.Contains(t, h.out.String(), "Item Urea added (ID: id-0002).")

	require.NoError(t, h.run("stock-out", "id-0002", "15", "--note", "sold to Pak Budi"))
	assert.Contains(t, h.out.String(), "OUT 15 kg Urea. Stock now 25 (was 40).")

	require.NoError(t, h.run("stock-in", "--date", "2024-05-09", "id-0002", "5"))
	assert.Contains(t, h.out.String(), "Stock now 30")

	err := h.run("stock-out", "id-0002", "100")
	assert.ErrorIs(t, err, core.ErrInsufficientStock)

	require.NoError(t, h.run("items"))
	assert.Contains(t, h.out.String(), "Rp 75.000")

	require.NoError(t, h.run("history", "--type", "stock-out"))
	assert.Contains(t, h.out.String(), "sold to Pak Budi")
	assert.Contains(t, h.out.String(), "Total 2 | in 1 | out 1")

	require.NoError(t, h.run("history", "--search", "budi"))
	assert.Contains(t, h.out.String(), "sold to Pak Budi")
}

func TestHistorySearchHelp(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.run("history", "-h"), cli.ErrUsage)
	assert.Contains(t, h.out.String(), "match item name or note text")
	assert.NotContains(t, h.out.String(), "warehouse")
}

func TestEditItemKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("add-item", "--name", "Sekop", "--unit", "pcs", "--price", "85000", "--min-stock", "3", "--warehouse", h.wh))

	require.NoError(t, h.run("edit-item", "id-0002", "--price", "90000"))
	it, err := h.svc.GetItem(context.Background(), "id-0002")
	require.NoError(t, err)
	assert.Equal(t, "Sekop", it.Name)
	assert.Equal(t, "pcs", it.Unit)
	assert.Equal(t, int64(90000), it.Price)
	assert.Equal(t, 3, it.MinStock)
}

func TestTransferAndDeleteCommands(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("add-warehouse", "--name", "Gudang Timur", "--location", "Blok C", "--capacity", "60"))
	assert.Contains(t, h.out.String(), "(ID: id-0002)")
	require.NoError(t, h.run("add-item", "--name", "Urea", "--unit", "kg", "--stock", "50", "--warehouse", h.wh))

	require.NoError(t, h.run("candidates"))
	assert.Contains(t, h.out.String(), "-> Gudang Timur (id-0002)")

	require.NoError(t, h.run("transfer", "id-0003", "id-0002", "50"))
	assert.Contains(t, h.out.String(), "Transferred 50 kg Urea from Gudang Utama to Gudang Timur (moved).")

	err := h.run("delete-warehouse", "id-0002")
	assert.ErrorIs(t, err, core.ErrConstraint)
	require.NoError(t, h.run("delete-warehouse", h.wh))

	require.NoError(t, h.run("delete-item", "id-0003"))
	err = h.run("delete-item", "id-0003")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExportImportAndClear(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("add-item", "--name", "Urea", "--unit", "kg", "--stock", "12", "--warehouse", h.wh))

	require.NoError(t, h.run("export"))
	exported := filepath.Join(h.dir, "stok-toko-pertanian-2024-05-10.json")
	assert.FileExists(t, exported)
	assert.Contains(t, h.out.String(), "1 item(s)")

	xlsx := filepath.Join(h.dir, "backup.xlsx")
	require.NoError(t, h.run("export", "--format", "xlsx", "--out", xlsx))
	assert.FileExists(t, xlsx)

	require.NoError(t, h.run("export-history"))
	assert.FileExists(t, filepath.Join(h.dir, "riwayat-transaksi-2024-05-10.json"))

	require.NoError(t, h.run("clear"))
	assert.Contains(t, h.out.String(), "Re-run with --yes")
	dash, err := h.svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Summary.TotalItems, "clear without --yes changes nothing")

	require.NoError(t, h.run("clear", "--yes"))
	dash, err = h.svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, dash.Summary.TotalWarehouses)

	require.NoError(t, h.run("import", exported))
	assert.Contains(t, h.out.String(), "REPLACES all current data")
	dash, err = h.svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, dash.Summary.TotalItems, "import without --yes is only a preview")

	require.NoError(t, h.run("import", xlsx, "--yes"))
	assert.Contains(t, h.out.String(), "Imported 1 warehouse(s), 1 item(s), 0 transaction(s).")
	dash, err = h.svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, dash.Summary.TotalItems)
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.run(), cli.ErrUsage)
	assert.ErrorIs(t, h.run("frobnicate"), cli.ErrUsage)
	assert.Contains(t, h.out.String(), "Unknown command: frobnicate")
	assert.ErrorIs(t, h.run("transfer", "id-1"), cli.ErrUsage)
	assert.ErrorIs(t, h.run("items", "--bogus"), cli.ErrUsage)
	assert.Error(t, h.run("stock-in", "id-1", "many"))
}
