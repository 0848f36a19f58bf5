package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend persists all keys as one JSON object in a file. Every Set or
// Remove rewrites the file through a temp file and rename, so a crash leaves
// either the old or the new contents.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileBackend opens (or creates on first write) the store file at path.
// An unreadable file is treated as empty; it is replaced on the next write.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	b := &FileBackend{path: path, values: map[string]string{}}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return b, nil
	case err != nil:
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &b.values); err != nil {
			b.values = map[string]string{}
		}
	}
	return b, nil
}

func (b *FileBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *FileBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, had := b.values[key]
	b.values[key] = value
	if err := b.flush(); err != nil {
		if had {
			b.values[key] = prev
		} else {
			delete(b.values, key)
		}
		return err
	}
	return nil
}

func (b *FileBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	prev, had := b.values[key]
	if !had {
		return nil
	}
	delete(b.values, key)
	if err := b.flush(); err != nil {
		b.values[key] = prev
		return err
	}
	return nil
}

func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) flush() error {
	raw, err := json.MarshalIndent(b.values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}
