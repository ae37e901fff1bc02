package catalog

import (
	"context"
	"sort"
)

// MemoryCatalog is a static in-process table. It is never written after
// construction, so concurrent lookups need no locking.
type MemoryCatalog struct {
	items map[string]Item
	order []string
}

func NewMemoryCatalog(items []Item) *MemoryCatalog {
	c := &MemoryCatalog{items: make(map[string]Item, len(items))}
	for _, it := range items {
		if _, exists := c.items[it.ID]; !exists {
			c.order = append(c.order, it.ID)
		}
		c.items[it.ID] = it
	}
	sort.Strings(c.order)
	return c
}

func (c *MemoryCatalog) Lookup(_ context.Context, id string) (Item, bool, error) {
	it, ok := c.items[id]
	return it, ok, nil
}

func (c *MemoryCatalog) List(_ context.Context) ([]Item, error) {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id])
	}
	return out, nil
}

var _ Catalog = (*MemoryCatalog)(nil)
