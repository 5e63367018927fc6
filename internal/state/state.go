// Package state persists the availability snapshot: a flat JSON object
// mapping item code to a boolean (true = in stock).
package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Store loads and saves the snapshot.
type Store interface {
	// Load returns the persisted mapping. A missing or unparsable snapshot
	// yields an empty mapping and no error.
	Load(ctx context.Context) (map[string]bool, error)
	// Save overwrites the persisted mapping in full.
	Save(ctx context.Context, snapshot map[string]bool) error
}

// FileStore implements Store on a local JSON file. Writes go through a
// temporary file and rename under an advisory lock on "<path>.lock".
type FileStore struct {
	path string
	log  *slog.Logger
}

// FileOption configures the FileStore.
type FileOption func(*FileStore)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) FileOption {
	return func(s *FileStore) {
		s.log = l
	}
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{
		path: path,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. Non-boolean values are dropped.
func (s *FileStore) Load(_ context.Context) (map[string]bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", s.path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Warn("snapshot unreadable, starting empty", "path", s.path, "error", err)
		return map[string]bool{}, nil
	}

	out := make(map[string]bool, len(raw))
	for code, v := range raw {
		b, ok := v.(bool)
		if !ok {
			s.log.Warn("dropping non-boolean snapshot entry", "path", s.path, "item", code)
			continue
		}
		out[code] = b
	}

	return out, nil
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(_ context.Context, snapshot map[string]bool) error {
	if snapshot == nil {
		snapshot = map[string]bool{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking snapshot: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}
