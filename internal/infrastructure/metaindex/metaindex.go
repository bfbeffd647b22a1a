package metaindex

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"filevault-api/internal/domain/file"
)

// Document stores the whole record collection as a single JSON file. The
// load-then-replace scheme trades write amplification for the guarantee that
// one document is never partially written: Store renames a fully written temp
// file over the old one.
type Document struct {
	logger *zap.Logger
	path   string

	mu sync.Mutex // guards the file between Load/Store pairs of one process
}

func NewDocument(logger *zap.Logger, path string) (*Document, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	return &Document{logger: logger, path: path}, nil
}

// Load returns the persisted collection, empty if the document was never written.
func (d *Document) Load() (file.Records, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file.Records{}, nil
		}
		return nil, fmt.Errorf("index read failed: %w", err)
	}

	var records file.Records
	if err = json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("index decode failed: %w", err)
	}

	return records, nil
}

// Store replaces the entire persisted collection.
func (d *Document) Store(records file.Records) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if records == nil {
		records = file.Records{}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("index encode failed: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".index-*")
	if err != nil {
		return fmt.Errorf("index write failed: %w", err)
	}
	if _, err = tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("index write failed: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("index write failed: %w", err)
	}
	if err = os.Rename(tmp.Name(), d.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("index write failed: %w", err)
	}

	return nil
}
