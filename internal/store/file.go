package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agri-inventory/internal/core"
)

// fileFormatVersion is written into every saved document.
const fileFormatVersion = 1

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Version     int    `json:"version"`
	LastUpdated string `json:"lastUpdated"`
	core.Snapshot
}

// FileStore keeps the snapshot as a JSON document on local disk. Writes go to
// a temporary file in the same directory which is then renamed over the target.
type FileStore struct {
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// Path returns the location of the data file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (*core.Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data file %s: %w", f.path, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode data file %s: %w", f.path, err)
	}
	if doc.Version > fileFormatVersion {
		return nil, fmt.Errorf("data file %s has format version %d, this build reads up to %d",
			f.path, doc.Version, fileFormatVersion)
	}
	snap := doc.Snapshot
	return &snap, nil
}

func (f *FileStore) Save(ctx context.Context, snap core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := fileDocument{
		Version:     fileFormatVersion,
		LastUpdated: f.now().UTC().Format(time.RFC3339),
		Snapshot:    snap,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace data file %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(f.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove data file %s: %w", f.path, err)
	}
	return nil
}
