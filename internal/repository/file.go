// Package repository provides key-value persistence backends for the
// configuration store: in-memory, a local JSON file and PostgreSQL.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
)

// DefaultStorageFile is the file used when no path is configured.
const DefaultStorageFile = "storage.json"

// FileStore keeps all keys in a single JSON object on disk. Every Set
// rewrites the whole file through a temporary file and a rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a FileStore backed by path. The file is created on
// the first Set.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultStorageFile
	}
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (fs *FileStore) Path() string {
	return fs.path
}

// Get returns the value stored under key.
func (fs *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key and persists the file.
func (fs *FileStore) Set(_ context.Context, key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	values, err := fs.load()
	if err != nil {
		return err
	}
	values[key] = value
	return fs.save(values)
}

func (fs *FileStore) load() (map[string]string, error) {
	f, err := os.Open(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("open storage: %w", err)
	}
	defer f.Close()

	values := map[string]string{}
	if err := json.NewDecoder(f).Decode(&values); err != nil {
		return nil, fmt.Errorf("decode storage %s: %w", fs.path, err)
	}
	return values, nil
}

func (fs *FileStore) save(values map[string]string) (err error) {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("create temp storage: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	err = enc.Encode(values)
	err = multierr.Append(err, tmp.Sync())
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return fmt.Errorf("write storage: %w", err)
	}

	if err = os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}
	return nil
}
