package core

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// LedgerConfig wires the collaborators a Ledger needs. Zero values select
// UUIDGenerator, SystemClock and root collation.
type LedgerConfig struct {
	IDs    IDGenerator
	Clock  Clock
	Locale language.Tag
}

type nameKey struct {
	warehouseID string
	name        string
}

func keyFor(warehouseID, name string) nameKey {
	return nameKey{warehouseID: warehouseID, name: strings.ToLower(strings.TrimSpace(name))}
}

// Ledger owns the warehouses, items and transactions of one store and is the
// only path by which they change. It is not safe for concurrent use; callers
// that share a Ledger across goroutines must serialise access.
//
// Every mutating method validates fully before touching state, so a returned
// error always means nothing changed.
type Ledger struct {
	ids      IDGenerator
	clock    Clock
	collator *collate.Collator

	warehouses   []Warehouse
	items        []Item
	transactions []Transaction

	// byName maps (warehouse id, lower-cased item name) to the item id holding it.
	byName map[nameKey]string
}

func NewLedger(cfg LedgerConfig) *Ledger {
	if cfg.IDs == nil {
		cfg.IDs = UUIDGenerator{}
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	return &Ledger{
		ids:      cfg.IDs,
		clock:    cfg.Clock,
		collator: collate.New(cfg.Locale),
		byName:   make(map[nameKey]string),
	}
}

func (l *Ledger) today() string {
	return l.clock.Now().Format(DateLayout)
}

func (l *Ledger) warehouseIndex(id string) int {
	return slices.IndexFunc(l.warehouses, func(w Warehouse) bool { return w.ID == id })
}

func (l *Ledger) itemIndex(id string) int {
	return slices.IndexFunc(l.items, func(it Item) bool { return it.ID == id })
}

// itemByName returns the index of the item named name in warehouseID, or -1.
func (l *Ledger) itemByName(warehouseID, name string) int {
	id, ok := l.byName[keyFor(warehouseID, name)]
	if !ok {
		return -1
	}
	return l.itemIndex(id)
}

func (l *Ledger) removeItemAt(i int) {
	it := l.items[i]
	k := keyFor(it.WarehouseID, it.Name)
	if l.byName[k] == it.ID {
		delete(l.byName, k)
	}
	l.items = slices.Delete(l.items, i, i+1)
}

// IsEmpty reports whether the ledger holds no warehouses, items or transactions.
func (l *Ledger) IsEmpty() bool {
	return len(l.warehouses) == 0 && len(l.items) == 0 && len(l.transactions) == 0
}

// Warehouse returns a copy of the warehouse with the given id.
func (l *Ledger) Warehouse(id string) (Warehouse, error) {
	wid, err := NormalizeID("warehouseId", id)
	if err != nil {
		return Warehouse{}, err
	}
	i := l.warehouseIndex(wid)
	if i < 0 {
		return Warehouse{}, notFoundError("warehouseId", wid, "warehouse %s not found", wid)
	}
	return l.warehouses[i], nil
}

// Item returns a copy of the item with the given id.
func (l *Ledger) Item(id string) (Item, error) {
	iid, err := NormalizeID("itemId", id)
	if err != nil {
		return Item{}, err
	}
	i := l.itemIndex(iid)
	if i < 0 {
		return Item{}, notFoundError("itemId", iid, "item %s not found", iid)
	}
	return l.items[i], nil
}

// ── Warehouses ────────────────────────────────────────────────────────────────

// AddWarehouse creates a warehouse with a freshly generated id.
func (l *Ledger) AddWarehouse(name, location string, capacity int) (Warehouse, error) {
	w := Warehouse{
		Name:     strings.TrimSpace(name),
		Location: strings.TrimSpace(location),
		Capacity: capacity,
	}
	if err := w.Validate(); err != nil {
		return Warehouse{}, err
	}
	w.ID = l.ids.NewID()
	w.CreatedAt = l.clock.Now()
	l.warehouses = append(l.warehouses, w)
	return w, nil
}

// DeleteWarehouse removes an empty warehouse. It fails with ErrConstraint
// while any item still references it.
func (l *Ledger) DeleteWarehouse(id string) error {
	wid, err := NormalizeID("warehouseId", id)
	if err != nil {
		return err
	}
	i := l.warehouseIndex(wid)
	if i < 0 {
		return notFoundError("warehouseId", wid, "warehouse %s not found", wid)
	}

	refs := 0
	for _, it := range l.items {
		if it.WarehouseID == wid {
			refs++
		}
	}
	if refs > 0 {
		return newError(ErrConstraint, "warehouseId", wid,
			"cannot delete warehouse %s: %d item(s) are still stored in it", l.warehouses[i].Name, refs)
	}

	l.warehouses = slices.Delete(l.warehouses, i, i+1)
	return nil
}

// ── Items ─────────────────────────────────────────────────────────────────────

// AddItem creates an item in an existing warehouse. A name already present in
// that warehouse (ignoring case) is rejected with ErrDuplicate; stock for an
// existing item must go through AdjustStock instead.
func (l *Ledger) AddItem(req NewItem) (Item, error) {
	it := Item{
		Name:        strings.TrimSpace(req.Name),
		Unit:        strings.TrimSpace(req.Unit),
		Stock:       req.Stock,
		Price:       req.Price,
		MinStock:    minStockOrDefault(req.MinStock),
		WarehouseID: strings.TrimSpace(req.WarehouseID),
	}
	if err := it.Validate(); err != nil {
		return Item{}, err
	}

	wid, err := NormalizeID("warehouseId", it.WarehouseID)
	if err != nil {
		return Item{}, err
	}
	wi := l.warehouseIndex(wid)
	if wi < 0 {
		return Item{}, validationError("warehouseId", wid, "warehouse %s does not exist", wid)
	}
	if l.itemByName(wid, it.Name) >= 0 {
		return Item{}, newError(ErrDuplicate, "name", it.Name,
			"item %q already exists in warehouse %s; use a stock adjustment to add stock",
			it.Name, l.warehouses[wi].Name)
	}

	it.ID = l.ids.NewID()
	it.WarehouseID = wid
	it.WarehouseName = l.warehouses[wi].Name
	it.CreatedAt = l.clock.Now()
	it.LastUpdated = l.today()

	l.items = append(l.items, it)
	l.byName[keyFor(wid, it.Name)] = it.ID
	return it, nil
}

// EditItem updates name, unit, price and reorder threshold. Stock and
// warehouse binding are never touched here.
func (l *Ledger) EditItem(id string, upd ItemUpdate) (Item, error) {
	iid, err := NormalizeID("itemId", id)
	if err != nil {
		return Item{}, err
	}
	i := l.itemIndex(iid)
	if i < 0 {
		return Item{}, notFoundError("itemId", iid, "item %s not found", iid)
	}

	current := l.items[i]
	next := current
	next.Name = strings.TrimSpace(upd.Name)
	next.Unit = strings.TrimSpace(upd.Unit)
	next.Price = upd.Price
	next.MinStock = minStockOrDefault(upd.MinStock)
	if err := next.Validate(); err != nil {
		return Item{}, err
	}
	if j := l.itemByName(current.WarehouseID, next.Name); j >= 0 && l.items[j].ID != iid {
		return Item{}, newError(ErrDuplicate, "name", next.Name,
			"item %q already exists in warehouse %s", next.Name, current.WarehouseName)
	}
	next.LastUpdated = l.today()

	delete(l.byName, keyFor(current.WarehouseID, current.Name))
	l.byName[keyFor(next.WarehouseID, next.Name)] = iid
	l.items[i] = next
	return next, nil
}

// DeleteItem removes an item. Existing transactions keep their snapshots.
func (l *Ledger) DeleteItem(id string) error {
	iid, err := NormalizeID("itemId", id)
	if err != nil {
		return err
	}
	i := l.itemIndex(iid)
	if i < 0 {
		return notFoundError("itemId", iid, "item %s not found", iid)
	}
	l.removeItemAt(i)
	return nil
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// AdjustStock records a stock-in or stock-out against one item and is the only
// way stock changes outside of transfers. A stock-out larger than the current
// stock fails with ErrInsufficientStock and records nothing.
func (l *Ledger) AdjustStock(adj Adjustment) (Transaction, error) {
	if adj.Type != StockIn && adj.Type != StockOut {
		return Transaction{}, validationError("type", adj.Type,
			"adjustment type must be %s or %s, got %q", StockIn, StockOut, adj.Type)
	}
	if adj.Quantity <= 0 {
		return Transaction{}, validationError("quantity", adj.Quantity,
			"quantity must be a positive integer, got %d", adj.Quantity)
	}
	date, err := parseDate("date", adj.Date)
	if err != nil {
		return Transaction{}, err
	}
	iid, err := NormalizeID("itemId", adj.ItemID)
	if err != nil {
		return Transaction{}, err
	}
	i := l.itemIndex(iid)
	if i < 0 {
		return Transaction{}, notFoundError("itemId", iid, "item %s not found", iid)
	}

	it := l.items[i]
	oldStock := it.Stock
	if adj.Type == StockIn && adj.Quantity > MaxStock-oldStock {
		return Transaction{}, validationError("quantity", adj.Quantity,
			"stock of %s would exceed %d: %d %s on hand, %d requested", it.Name, MaxStock, oldStock, it.Unit, adj.Quantity)
	}
	newStock := oldStock + adj.Quantity
	if adj.Type == StockOut {
		if adj.Quantity > oldStock {
			return Transaction{}, newError(ErrInsufficientStock, "quantity", adj.Quantity,
				"insufficient stock for %s: %d %s available, %d requested", it.Name, oldStock, it.Unit, adj.Quantity)
		}
		newStock = oldStock - adj.Quantity
	}

	it.Stock = newStock
	it.LastUpdated = date
	l.items[i] = it

	tx := Transaction{
		ID:            l.ids.NewID(),
		ItemID:        it.ID,
		ItemName:      it.Name,
		WarehouseID:   it.WarehouseID,
		WarehouseName: it.WarehouseName,
		Type:          adj.Type,
		Quantity:      adj.Quantity,
		Unit:          it.Unit,
		Date:          date,
		Timestamp:     l.clock.Now(),
		Note:          strings.TrimSpace(adj.Note),
		OldStock:      intPtr(oldStock),
		NewStock:      intPtr(newStock),
	}
	l.transactions = append(l.transactions, tx)
	return tx, nil
}
