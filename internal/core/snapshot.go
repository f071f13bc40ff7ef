package core

import "slices"

// Snapshot returns a deep copy of the ledger state.
func (l *Ledger) Snapshot() Snapshot {
	return Snapshot{
		Warehouses:   l.warehouses,
		Items:        l.items,
		Transactions: l.transactions,
	}.Clone()
}

// Clone returns a copy of s that shares no memory with it.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Warehouses:   slices.Clone(s.Warehouses),
		Items:        slices.Clone(s.Items),
		Transactions: cloneTransactions(s.Transactions),
	}
}

// Counts returns the number of warehouses, items and transactions in s.
func (s Snapshot) Counts() (warehouses, items, transactions int) {
	return len(s.Warehouses), len(s.Items), len(s.Transactions)
}

// Restore replaces the whole ledger with snap. The snapshot is validated first
// (entity shapes, unique ids, resolvable warehouse references, unique names per
// warehouse); any defect fails with ErrValidation and leaves the ledger as it was.
func (l *Ledger) Restore(snap Snapshot) error {
	warehouseIDs := make(map[string]bool, len(snap.Warehouses))
	for _, w := range snap.Warehouses {
		if _, err := NormalizeID("warehouses.id", w.ID); err != nil {
			return err
		}
		if err := w.Validate(); err != nil {
			return err
		}
		if warehouseIDs[w.ID] {
			return validationError("warehouses.id", w.ID, "duplicate warehouse id %s", w.ID)
		}
		warehouseIDs[w.ID] = true
	}

	itemIDs := make(map[string]bool, len(snap.Items))
	index := make(map[nameKey]string, len(snap.Items))
	for _, it := range snap.Items {
		if _, err := NormalizeID("items.id", it.ID); err != nil {
			return err
		}
		if !IsValidItem(it, func(id string) bool { return warehouseIDs[id] }) {
			if err := it.Validate(); err != nil {
				return err
			}
			return validationError("items.warehouseId", it.WarehouseID,
				"item %s references unknown warehouse %s", it.ID, it.WarehouseID)
		}
		if itemIDs[it.ID] {
			return validationError("items.id", it.ID, "duplicate item id %s", it.ID)
		}
		itemIDs[it.ID] = true

		k := keyFor(it.WarehouseID, it.Name)
		if _, dup := index[k]; dup {
			return validationError("items.name", it.Name,
				"item %q appears twice in warehouse %s", it.Name, it.WarehouseID)
		}
		index[k] = it.ID
	}

	txIDs := make(map[string]bool, len(snap.Transactions))
	for _, t := range snap.Transactions {
		if err := validateTransaction(t); err != nil {
			return err
		}
		if txIDs[t.ID] {
			return validationError("transactions.id", t.ID, "duplicate transaction id %s", t.ID)
		}
		txIDs[t.ID] = true
	}

	snap = snap.Clone()
	l.warehouses = snap.Warehouses
	l.items = snap.Items
	l.transactions = snap.Transactions
	l.byName = index
	return nil
}

// Clear drops every warehouse, item and transaction.
func (l *Ledger) Clear() {
	l.warehouses = nil
	l.items = nil
	l.transactions = nil
	l.byName = make(map[nameKey]string)
}

func cloneTransactions(in []Transaction) []Transaction {
	if in == nil {
		return nil
	}
	out := make([]Transaction, len(in))
	for i, t := range in {
		if t.OldStock != nil {
			t.OldStock = intPtr(*t.OldStock)
		}
		if t.NewStock != nil {
			t.NewStock = intPtr(*t.NewStock)
		}
		out[i] = t
	}
	return out
}
