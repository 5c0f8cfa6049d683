package catalog

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrItemNotFound is returned when no item has the requested name
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrDuplicateItem is returned when two items share a display name
	ErrDuplicateItem = errors.New("duplicate catalog item")
)

// Catalog is a concurrency-safe registry of items keyed by display name.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]ModelCatalogItem
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{items: make(map[string]ModelCatalogItem)}
}

// Add registers item. It fails with ErrDuplicateItem when the name is taken.
func (c *Catalog) Add(item ModelCatalogItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[item.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.Name())
	}
	c.items[item.Name()] = item
	return nil
}

// Get looks an item up by display name.
func (c *Catalog) Get(name string) (ModelCatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	return item, nil
}

// List returns all items sorted by name.
func (c *Catalog) List() []ModelCatalogItem {
	c.mu.RLock()
	items := make([]ModelCatalogItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, item)
	}
	c.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name() < items[j].Name()
	})
	return items
}

// Len returns the number of registered items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Replace swaps the whole content of the catalog. On a duplicate name the
// catalog is left untouched.
func (c *Catalog) Replace(items []ModelCatalogItem) error {
	next := make(map[string]ModelCatalogItem, len(items))
	for _, item := range items {
		if _, exists := next[item.Name()]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, item.Name())
		}
		next[item.Name()] = item
	}

	c.mu.Lock()
	c.items = next
	c.mu.Unlock()
	return nil
}
