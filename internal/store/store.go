// Package store persists ledger snapshots. Every driver saves and loads the
// complete state at once; there is no partial update.
package store

import (
	"context"

	"agri-inventory/internal/core"
)

// SnapshotStore is the persistence gateway used by the application service.
type SnapshotStore interface {
	// Load returns the last saved snapshot, or nil and no error when nothing
	// has been saved yet.
	Load(ctx context.Context) (*core.Snapshot, error)

	// Save replaces whatever was stored before with snap.
	Save(ctx context.Context, snap core.Snapshot) error

	// Clear removes the stored snapshot so the next Load reports absence.
	Clear(ctx context.Context) error
}
