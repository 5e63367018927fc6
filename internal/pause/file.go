package pause

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileFlag stores the flag as "true" or "false" in a local file. A missing
// file means running.
type FileFlag struct {
	path string
}

// NewFileFlag creates a FileFlag at path.
func NewFileFlag(path string) *FileFlag {
	return &FileFlag{path: path}
}

// Backend implements Flag.
func (f *FileFlag) Backend() string { return "file" }

// Paused reads the flag file under a shared lock. A missing file or
// directory means running.
func (f *FileFlag) Paused(_ context.Context) (bool, error) {
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	lock := flock.New(f.path + ".lock")
	if err := lock.RLock(); err != nil {
		return false, fmt.Errorf("locking pause flag: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading pause flag: %w", err)
	}

	return ParseValue(string(data)), nil
}

// SetPaused writes the flag file under an exclusive lock.
func (f *FileFlag) SetPaused(_ context.Context, paused bool) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return fmt.Errorf("creating pause flag directory: %w", err)
	}

	lock := flock.New(f.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking pause flag: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.WriteFile(f.path, []byte(FormatValue(paused)+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing pause flag: %w", err)
	}

	return nil
}
