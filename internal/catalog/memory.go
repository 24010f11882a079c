package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryCatalog is an in-memory Catalog used by tests.
type MemoryCatalog struct {
	mu    sync.RWMutex
	items map[int]Item
}

// NewMemoryCatalog creates an empty in-memory catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{items: make(map[int]Item)}
}

// Put inserts or replaces an item.
func (c *MemoryCatalog) Put(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

// Get implements Lookup.
func (c *MemoryCatalog) Get(_ context.Context, menuItemID int) (*Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[menuItemID]
	if !ok {
		return nil, notFound(menuItemID)
	}
	return &item, nil
}

// ListAvailable implements Catalog.
func (c *MemoryCatalog) ListAvailable(_ context.Context) ([]Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var items []Item
	for _, item := range c.items {
		if item.IsAvailable {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}
