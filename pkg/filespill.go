// Package pkg provides generic helpers shared by the treejson commands.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileSpill buffers items of type T in a gob file so large batches do not
// have to stay in memory.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	AppendBatch(items []T) error
	Get(index uint64) (T, error)
	Range(f func(index uint64, item T) error) error
	Close() error
	// Remove closes the spill and deletes its file.
	Remove() error
}

// SpillOption configures NewFileSpill.
type SpillOption func(*spillConfig)

type spillConfig struct {
	dir     string
	pattern string
}

// WithDir places the spill file in dir instead of the default temp directory.
func WithDir(dir string) SpillOption {
	return func(c *spillConfig) {
		c.dir = dir
	}
}

// WithPattern sets the os.CreateTemp pattern of the spill file.
func WithPattern(pattern string) SpillOption {
	return func(c *spillConfig) {
		c.pattern = pattern
	}
}

// DefaultSpillDir is where spills go when no directory is configured.
func DefaultSpillDir() string {
	return filepath.Join(os.TempDir(), "treejson-spill")
}

type fileSpill[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
	closed  bool
}

// NewFileSpill creates an empty FileSpill for items of type T.
func NewFileSpill[T any](opts ...SpillOption) (FileSpill[T], error) {
	cfg := spillConfig{dir: DefaultSpillDir(), pattern: "spill-*.gob"}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(cfg.dir, 0o750); err != nil {
		slog.Error("failed to create spill directory", "path", cfg.dir, "error", err)
		return nil, fmt.Errorf("create spill directory: %w", err)
	}

	file, err := os.CreateTemp(cfg.dir, cfg.pattern)
	if err != nil {
		slog.Error("failed to create spill file", "path", cfg.dir, "error", err)
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	slog.Debug("created filespill", "path", file.Name())

	return &fileSpill[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append implements FileSpill.
func (f *fileSpill[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("append to closed spill %s", f.path)
	}

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", f.path, "index", f.length, "error", err)
		return fmt.Errorf("encode item: %w", err)
	}

	f.length++

	return nil
}

// Path implements FileSpill.
func (f *fileSpill[T]) Path() string {
	return f.path
}

// AppendBatch implements FileSpill.
func (f *fileSpill[T]) AppendBatch(items []T) error {
	for _, item := range items {
		if err := f.Append(item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements FileSpill. Items stay readable after Close.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closeLocked()
}

func (f *fileSpill[T]) closeLocked() error {
	if f.closed {
		return nil
	}

	f.closed = true

	if err := f.file.Close(); err != nil {
		slog.Error("failed to close spill", "path", f.path, "error", err)
		return err
	}

	slog.Debug("closed filespill", "path", f.path, "length", f.length)

	return nil
}

// Remove implements FileSpill.
func (f *fileSpill[T]) Remove() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	closeErr := f.closeLocked()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, err)
	}

	return closeErr
}

// Get implements FileSpill.
func (f *fileSpill[T]) Get(index uint64) (T, error) {
	var found T

	if n := f.Len(); index >= n {
		return found, fmt.Errorf("index %d out of bounds (length %d)", index, n)
	}

	errStop := errors.New("stop")

	err := f.Range(func(i uint64, item T) error {
		if i == index {
			found = item
			return errStop
		}

		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		var zero T
		return zero, err
	}

	return found, nil
}

// Len implements FileSpill.
func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

// Range implements FileSpill. Items are decoded in append order.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open spill: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close spill reader", "path", f.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range f.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}
