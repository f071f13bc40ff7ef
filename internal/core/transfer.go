package core

import "fmt"

// TransferStock moves quantity units of an item to another warehouse.
//
// If the target already holds an item with the same name (ignoring case) the
// quantity is merged into it, and the source record is removed once its stock
// reaches exactly zero. Otherwise a full-quantity move re-points the source
// record itself (its id is kept), and a partial move clones the item into a new
// record with a fresh id. Exactly one transfer transaction is appended in every
// case.
func (l *Ledger) TransferStock(itemID, targetWarehouseID string, quantity int) (TransferResult, error) {
	if quantity <= 0 {
		return TransferResult{}, validationError("quantity", quantity,
			"quantity must be a positive integer, got %d", quantity)
	}
	iid, err := NormalizeID("itemId", itemID)
	if err != nil {
		return TransferResult{}, err
	}
	wid, err := NormalizeID("targetWarehouseId", targetWarehouseID)
	if err != nil {
		return TransferResult{}, err
	}

	si := l.itemIndex(iid)
	if si < 0 {
		return TransferResult{}, notFoundError("itemId", iid, "item %s not found", iid)
	}
	ti := l.warehouseIndex(wid)
	if ti < 0 {
		return TransferResult{}, validationError("targetWarehouseId", wid, "target warehouse %s does not exist", wid)
	}

	source := l.items[si]
	target := l.warehouses[ti]
	if source.WarehouseID == target.ID {
		return TransferResult{}, validationError("targetWarehouseId", wid,
			"%s is already stored in %s", source.Name, target.Name)
	}
	if quantity > source.Stock {
		return TransferResult{}, newError(ErrInsufficientStock, "quantity", quantity,
			"cannot move %d %s of %s: only %d available", quantity, source.Unit, source.Name, source.Stock)
	}

	fromID, fromName := source.WarehouseID, source.WarehouseName
	result := TransferResult{SourceItemID: source.ID}

	if mi := l.itemByName(target.ID, source.Name); mi >= 0 {
		merged := l.items[mi]
		if quantity > MaxStock-merged.Stock {
			return TransferResult{}, validationError("quantity", quantity,
				"%s in %s would exceed %d: %d %s on hand", merged.Name, target.Name, MaxStock, merged.Stock, merged.Unit)
		}
		merged.Stock += quantity
		merged.LastUpdated = l.today()
		l.items[mi] = merged

		source.Stock -= quantity
		l.items[si] = source

		result.Outcome = TransferMerged
		result.TargetItemID = merged.ID
		if source.Stock == 0 {
			l.removeItemAt(si)
			result.SourceRemoved = true
		}
	} else if quantity == source.Stock {
		delete(l.byName, keyFor(source.WarehouseID, source.Name))
		source.WarehouseID = target.ID
		source.WarehouseName = target.Name
		l.items[si] = source
		l.byName[keyFor(target.ID, source.Name)] = source.ID

		result.Outcome = TransferMoved
		result.TargetItemID = source.ID
	} else {
		clone := source
		clone.ID = l.ids.NewID()
		clone.Stock = quantity
		clone.WarehouseID = target.ID
		clone.WarehouseName = target.Name

		source.Stock -= quantity
		l.items[si] = source
		l.items = append(l.items, clone)
		l.byName[keyFor(target.ID, clone.Name)] = clone.ID

		result.Outcome = TransferSplit
		result.TargetItemID = clone.ID
	}

	tx := Transaction{
		ID:            l.ids.NewID(),
		ItemID:        source.ID,
		ItemName:      source.Name,
		WarehouseID:   fromID,
		WarehouseName: fromName,
		Type:          Transfer,
		Quantity:      quantity,
		Unit:          source.Unit,
		Date:          l.today(),
		Timestamp:     l.clock.Now(),
		Note:          fmt.Sprintf("Moved from %s to %s", fromName, target.Name),
		FromWarehouse: fromName,
		ToWarehouse:   target.Name,
	}
	l.transactions = append(l.transactions, tx)
	result.Transaction = tx
	return result, nil
}
