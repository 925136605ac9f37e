package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the knowledge base in one pretty-printed JSON file.
// Writers within one process are serialized.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the file. A missing file is an empty knowledge base.
func (f *FileStore) Load() (Entries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Save replaces the file atomically.
func (f *FileStore) Save(e Entries) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.write(e)
}

// Update loads, applies fn and saves while holding the store lock.
func (f *FileStore) Update(fn func(Entries) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, err := f.read()
	if err != nil {
		return err
	}
	if err := fn(e); err != nil {
		return err
	}
	return f.write(e)
}

func (f *FileStore) read() (Entries, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Entries{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read experience file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Entries{}, nil
	}
	var e Entries
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse experience file: %w", err)
	}
	if e == nil {
		e = Entries{}
	}
	return e, nil
}

func (f *FileStore) write(e Entries) error {
	if err := validate(e); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("encode experience: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create knowledge dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".experience-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write experience: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close experience: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace experience file: %w", err)
	}
	return nil
}
