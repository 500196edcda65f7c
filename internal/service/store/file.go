package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kapu/randomuser-swipe-go/pkg/errors"
)

// FileSlot stores all keys in one JSON object on disk. Writes go to a temp file
// that is renamed over the target, so readers never see a partial document.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

// NewFileSlot creates a slot backed by a JSON document at path.
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (f *FileSlot) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, errors.NewCacheError("read failed", "get", key, err)
	}
	data, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

// Set rewrites the document through a temp file and rename.
func (f *FileSlot) Set(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		// An unreadable document is replaced rather than blocking every future save.
		doc = make(map[string]json.RawMessage)
	}
	doc[key] = json.RawMessage(data)

	if err := f.write(doc); err != nil {
		return errors.NewCacheError("write failed", "set", key, err)
	}
	return nil
}

func (f *FileSlot) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return errors.NewCacheError("read failed", "del", key, err)
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)

	if err := f.write(doc); err != nil {
		return errors.NewCacheError("write failed", "del", key, err)
	}
	return nil
}

func (f *FileSlot) read() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, err
	}

	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *FileSlot) write(doc map[string]json.RawMessage) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
