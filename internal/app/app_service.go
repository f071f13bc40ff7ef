package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"agri-inventory/internal/core"
	"agri-inventory/internal/interchange"
	"agri-inventory/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// ErrEmptyPreview is returned by ImportData when given a preview that did not
// come from PreviewImport.
var ErrEmptyPreview = errors.New("import preview holds no data")

// Options configures NewAppService. Zero values select a UUID generator, the
// system clock, root collation and the standard logger.
type Options struct {
	IDs              core.IDGenerator
	Clock            core.Clock
	Locale           language.Tag
	DefaultWarehouse AddWarehouseRequest
	Logger           *logrus.Logger
}

type appService struct {
	mu     sync.Mutex
	ledger *core.Ledger
	store  store.SnapshotStore
	clock  core.Clock
	seed   AddWarehouseRequest
	log    *logrus.Entry

	// dirty is set when the last save failed and cleared by the next success.
	dirty bool
}

// NewAppService constructs an appService that satisfies ApplicationService.
// The ledger starts empty; call Load to populate it from st.
func NewAppService(st store.SnapshotStore, opts Options) ApplicationService {
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.DefaultWarehouse.Name == "" {
		opts.DefaultWarehouse = AddWarehouseRequest{Name: "Main Warehouse", Location: "Default Location", Capacity: 100}
	}
	return &appService{
		ledger: core.NewLedger(core.LedgerConfig{IDs: opts.IDs, Clock: opts.Clock, Locale: opts.Locale}),
		store:  st,
		clock:  opts.Clock,
		seed:   opts.DefaultWarehouse,
		log:    opts.Logger.WithField("component", "app"),
	}
}

// persistLocked saves the current snapshot. The caller holds s.mu.
func (s *appService) persistLocked(ctx context.Context, reason string) error {
	if err := s.store.Save(ctx, s.ledger.Snapshot()); err != nil {
		s.dirty = true
		s.log.WithError(err).WithField("reason", reason).Warn("save failed, will retry on autosave")
		return fmt.Errorf("save snapshot: %w", err)
	}
	if s.dirty {
		s.log.WithField("reason", reason).Info("pending changes saved")
	}
	s.dirty = false
	return nil
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

func (s *appService) Load(ctx context.Context) (*LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if snap == nil {
		s.ledger.Clear()
		w, err := s.ledger.AddWarehouse(s.seed.Name, s.seed.Location, s.seed.Capacity)
		if err != nil {
			return nil, fmt.Errorf("seed default warehouse: %w", err)
		}
		s.log.WithFields(logrus.Fields{"warehouse_id": w.ID, "name": w.Name}).Info("no saved data, seeded default warehouse")
		_ = s.persistLocked(ctx, "seed")
		return &LoadResult{Seeded: true, Warehouses: 1}, nil
	}

	if err := s.ledger.Restore(*snap); err != nil {
		return nil, fmt.Errorf("stored data is invalid: %w", err)
	}
	wh, items, txs := snap.Counts()
	s.log.WithFields(logrus.Fields{"warehouses": wh, "items": items, "transactions": txs}).Info("data loaded")
	return &LoadResult{Warehouses: wh, Items: items, Transactions: txs}, nil
}

func (s *appService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx, "manual")
}

func (s *appService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.persistLocked(ctx, "flush")
}

func (s *appService) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.autosave(ctx)
		}
	}
}

func (s *appService) autosave(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ledger.IsEmpty() {
		return
	}
	if err := s.persistLocked(ctx, "autosave"); err == nil {
		s.log.Debug("autosave completed")
	}
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *appService) GetDashboard(ctx context.Context) (*DashboardResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &DashboardResult{
		Summary:    s.ledger.Summary(),
		Warehouses: s.ledger.WarehouseSummaries(),
	}, nil
}

func (s *appService) ListWarehouses(ctx context.Context) (*WarehouseListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &WarehouseListResult{Warehouses: s.ledger.WarehouseSummaries()}, nil
}

func (s *appService) ListItems(ctx context.Context, filter core.ItemFilter) (*ItemListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &ItemListResult{Items: s.ledger.ListItems(filter)}, nil
}

func (s *appService) GetItem(ctx context.Context, id string) (*core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.ledger.Item(id)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *appService) ListTransferCandidates(ctx context.Context) (*TransferCandidatesResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &TransferCandidatesResult{Candidates: s.ledger.ListTransferCandidates()}, nil
}

func (s *appService) ListTransactions(ctx context.Context, filter core.TransactionFilter) (*TransactionListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &TransactionListResult{
		Transactions: s.ledger.ListTransactions(filter),
		Stats:        s.ledger.TransactionStatistics(),
	}, nil
}

// ── Mutations ─────────────────────────────────────────────────────────────────

func (s *appService) AddWarehouse(ctx context.Context, req AddWarehouseRequest) (*core.Warehouse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.ledger.AddWarehouse(req.Name, req.Location, req.Capacity)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"warehouse_id": w.ID, "name": w.Name}).Info("warehouse added")
	_ = s.persistLocked(ctx, "add warehouse")
	return &w, nil
}

func (s *appService) DeleteWarehouse(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.DeleteWarehouse(id); err != nil {
		return err
	}
	s.log.WithField("warehouse_id", id).Info("warehouse deleted")
	_ = s.persistLocked(ctx, "delete warehouse")
	return nil
}

func (s *appService) AddItem(ctx context.Context, req AddItemRequest) (*core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.ledger.AddItem(core.NewItem{
		Name:        req.Name,
		Unit:        req.Unit,
		Stock:       req.Stock,
		Price:       req.Price,
		MinStock:    req.MinStock,
		WarehouseID: req.WarehouseID,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"item_id": it.ID, "warehouse_id": it.WarehouseID, "stock": it.Stock}).Info("item added")
	_ = s.persistLocked(ctx, "add item")
	return &it, nil
}

func (s *appService) EditItem(ctx context.Context, req EditItemRequest) (*core.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, err := s.ledger.EditItem(req.ID, core.ItemUpdate{
		Name:     req.Name,
		Unit:     req.Unit,
		Price:    req.Price,
		MinStock: req.MinStock,
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("item_id", it.ID).Info("item edited")
	_ = s.persistLocked(ctx, "edit item")
	return &it, nil
}

func (s *appService) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.DeleteItem(id); err != nil {
		return err
	}
	s.log.WithField("item_id", id).Info("item deleted")
	_ = s.persistLocked(ctx, "delete item")
	return nil
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*StockAdjustmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.clock.Now().Format(core.DateLayout)
	}
	tx, err := s.ledger.AdjustStock(core.Adjustment{
		ItemID:   req.ItemID,
		Type:     req.Type,
		Quantity: req.Quantity,
		Date:     date,
		Note:     req.Note,
	})
	if err != nil {
		return nil, err
	}
	it, err := s.ledger.Item(tx.ItemID)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"item_id":   tx.ItemID,
		"type":      tx.Type,
		"quantity":  tx.Quantity,
		"new_stock": it.Stock,
	}).Info("stock adjusted")
	_ = s.persistLocked(ctx, "adjust stock")
	return &StockAdjustmentResult{Item: it, Transaction: tx}, nil
}

func (s *appService) TransferStock(ctx context.Context, req TransferRequest) (*core.TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.ledger.TransferStock(req.ItemID, req.TargetWarehouseID, req.Quantity)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"item_id":        res.SourceItemID,
		"target_item_id": res.TargetItemID,
		"outcome":        res.Outcome,
		"quantity":       req.Quantity,
	}).Info("stock transferred")
	_ = s.persistLocked(ctx, "transfer")
	return &res, nil
}

// ── Import / export ───────────────────────────────────────────────────────────

func (s *appService) snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

func (s *appService) ExportData(ctx context.Context, w io.Writer) (*ExportResult, error) {
	snap := s.snapshot()
	now := s.clock.Now()
	if err := interchange.WriteJSON(w, interchange.NewDocument(snap, now)); err != nil {
		return nil, err
	}
	return exportResult(interchange.ExportFilename(interchange.DataFilePrefix, now, "json"), now, snap), nil
}

func (s *appService) ExportHistory(ctx context.Context, w io.Writer, filter core.TransactionFilter) (*ExportResult, error) {
	s.mu.Lock()
	txs := s.ledger.ListTransactions(filter)
	s.mu.Unlock()

	now := s.clock.Now()
	if err := interchange.WriteJSON(w, interchange.NewHistoryDocument(txs, now)); err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:     interchange.ExportFilename(interchange.HistoryFilePrefix, now, "json"),
		ExportedAt:   now,
		Transactions: len(txs),
	}, nil
}

func (s *appService) ExportWorkbook(ctx context.Context, w io.Writer) (*ExportResult, error) {
	snap := s.snapshot()
	now := s.clock.Now()
	if err := interchange.WriteWorkbook(w, snap); err != nil {
		return nil, err
	}
	return exportResult(interchange.ExportFilename(interchange.DataFilePrefix, now, "xlsx"), now, snap), nil
}

func exportResult(name string, at time.Time, snap core.Snapshot) *ExportResult {
	wh, items, txs := snap.Counts()
	return &ExportResult{Filename: name, ExportedAt: at, Warehouses: wh, Items: items, Transactions: txs}
}

func (s *appService) PreviewImport(ctx context.Context, r io.Reader, format ImportFormat) (*ImportPreview, error) {
	var (
		im  *interchange.Imported
		err error
	)
	switch format {
	case FormatJSON, "":
		format = FormatJSON
		im, err = interchange.ReadJSON(r)
	case FormatXLSX:
		im, err = interchange.ReadWorkbook(r)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return nil, err
	}

	// Dry run against a scratch ledger.
	if err := core.NewLedger(core.LedgerConfig{}).Restore(im.Snapshot); err != nil {
		return nil, err
	}

	wh, items, txs := im.Counts()
	return &ImportPreview{
		Format:       format,
		Warehouses:   wh,
		Items:        items,
		Transactions: txs,
		Legacy:       im.Legacy,
		imported:     im,
	}, nil
}

func (s *appService) ImportData(ctx context.Context, preview *ImportPreview) (*ImportResult, error) {
	if preview == nil || preview.imported == nil {
		return nil, ErrEmptyPreview
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Restore(preview.imported.Snapshot); err != nil {
		return nil, err
	}
	wh, items, txs := preview.imported.Counts()
	s.log.WithFields(logrus.Fields{"warehouses": wh, "items": items, "transactions": txs}).Info("data imported")
	saveErr := s.persistLocked(ctx, "import")
	return &ImportResult{Warehouses: wh, Items: items, Transactions: txs, Saved: saveErr == nil}, nil
}

func (s *appService) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear stored data: %w", err)
	}
	s.ledger.Clear()
	s.dirty = false
	s.log.Warn("all data cleared")
	return nil
}
