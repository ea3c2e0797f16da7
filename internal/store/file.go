package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "github.com/conneroisu/formpulse/internal/errors"
)

// File is a Store kept as a flat YAML mapping on disk. Every Set rewrites the
// file through a temporary file and a rename.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenFile loads path, creating an empty store when it does not exist yet.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, apperrors.NewConfigError("MISSING_PATH", "file store needs a path", nil)
	}

	f := &File{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return f, nil
	case err != nil:
		return nil, apperrors.NewStorageError("READ_FAILED", "failed to read store file", err)
	}

	if err := yaml.Unmarshal(data, &f.values); err != nil {
		return nil, apperrors.NewStorageError("DECODE_FAILED", fmt.Sprintf("failed to decode %s", path), err)
	}
	if f.values == nil {
		f.values = make(map[string]string)
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Close() error { return nil }

func (f *File) flush() error {
	data, err := yaml.Marshal(f.values)
	if err != nil {
		return apperrors.NewStorageError("ENCODE_FAILED", "failed to encode store", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return apperrors.NewStorageError("WRITE_FAILED", "failed to create store directory", err)
		}
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.NewStorageError("WRITE_FAILED", "failed to write store file", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return apperrors.NewStorageError("WRITE_FAILED", "failed to replace store file", err)
	}
	return nil
}
