package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// collection is a JSON array snapshot on disk. Writes go to a temp file
// that is renamed over the snapshot, so readers never see a partial file.
type collection[T any] struct {
	mu   sync.RWMutex
	path string
	id   func(*T) string
}

func newCollection[T any](root, name string, id func(*T) string) *collection[T] {
	return &collection[T]{path: filepath.Join(root, name), id: id}
}

func (c *collection[T]) load() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.path, err)
	}

	items := []T{}
	if len(data) == 0 {
		return items, nil
	}

	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", c.path, err)
	}

	return items, nil
}

func (c *collection[T]) store(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", c.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", c.path, err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", c.path, err)
	}

	return nil
}

func (c *collection[T]) all() ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.load()
}

// find returns a copy of the item with the given id.
func (c *collection[T]) find(id string) (*T, bool, error) {
	items, err := c.all()
	if err != nil {
		return nil, false, err
	}

	for i := range items {
		if c.id(&items[i]) == id {
			return &items[i], true, nil
		}
	}

	return nil, false, nil
}

// upsert replaces the item in place or appends it.
func (c *collection[T]) upsert(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}

	id := c.id(&item)
	for i := range items {
		if c.id(&items[i]) == id {
			items[i] = item

			return c.store(items)
		}
	}

	return c.store(append(items, item))
}

// remove deletes the item and reports whether it existed.
func (c *collection[T]) remove(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return false, err
	}

	for i := range items {
		if c.id(&items[i]) == id {
			return true, c.store(append(items[:i], items[i+1:]...))
		}
	}

	return false, nil
}

func (c *collection[T]) add(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}

	return c.store(append(items, item))
}
