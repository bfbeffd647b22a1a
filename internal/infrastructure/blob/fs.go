package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidKey  = errors.New("invalid blob key")
	ErrWriteFailed = errors.New("blob write failed")
)

// FSStore keeps each blob as one file under dir, named by its key. Writes go
// through a temp file and rename so a crash never leaves a half-written blob
// under a live key.
type FSStore struct {
	logger *zap.Logger
	dir    string
}

func NewFSStore(logger *zap.Logger, dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}

	return &FSStore{logger: logger, dir: dir}, nil
}

func (s *FSStore) path(key string) (string, error) {
	// keys are uuid-derived, but never trust them as path components
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.dir, key), nil
}

func (s *FSStore) Put(ctx context.Context, key string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if _, err = tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err = os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blob read failed: %w", err)
	}

	return b, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob delete failed: %w", err)
	}

	return nil
}

func (s *FSStore) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("blob dir read failed: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			// leftover temp file from an interrupted put
			s.logger.Warn("removing stale temp blob", zap.String("name", name))
			_ = os.Remove(filepath.Join(s.dir, name))
			continue
		}
		keys = append(keys, name)
	}

	return keys, nil
}
