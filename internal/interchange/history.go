package interchange

import (
	"time"

	"agri-inventory/internal/core"
)

// HistorySummary counts exported transactions by type.
type HistorySummary struct {
	TotalStockIn  int `json:"totalStockIn"`
	TotalStockOut int `json:"totalStockOut"`
	TotalTransfer int `json:"totalTransfer"`
}

// HistoryDocument is the transaction history export. Transactions keep the
// order they were given in, which is normally the filtered display order.
type HistoryDocument struct {
	Transactions      []core.Transaction `json:"transactions"`
	ExportDate        time.Time          `json:"exportDate"`
	TotalTransactions int                `json:"totalTransactions"`
	Summary           HistorySummary     `json:"summary"`
}

func NewHistoryDocument(txs []core.Transaction, at time.Time) HistoryDocument {
	doc := HistoryDocument{
		Transactions:      nonNil(core.Snapshot{Transactions: txs}.Clone().Transactions),
		ExportDate:        at.UTC(),
		TotalTransactions: len(txs),
	}
	for _, t := range txs {
		switch t.Type {
		case core.StockIn:
			doc.Summary.TotalStockIn++
		case core.StockOut:
			doc.Summary.TotalStockOut++
		case core.Transfer:
			doc.Summary.TotalTransfer++
		}
	}
	return doc
}
