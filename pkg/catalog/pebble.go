package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// PebbleCatalog keeps items in an on-disk pebble database so the table can be
// shared with (and refreshed by) processes other than this server.
type PebbleCatalog struct {
	db *pebble.DB
}

func OpenPebbleCatalog(path string) (*PebbleCatalog, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db: %w", err)
	}
	return &PebbleCatalog{db: db}, nil
}

func (s *PebbleCatalog) Close() error { return s.db.Close() }

// Put writes a single item, replacing any entry with the same id.
func (s *PebbleCatalog) Put(item Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}
	if err := s.db.Set(itemKey(item.ID), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// Seed writes items in one atomic batch.
func (s *PebbleCatalog) Seed(items []Item) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal item %q: %w", item.ID, err)
		}
		if err := batch.Set(itemKey(item.ID), data, nil); err != nil {
			return fmt.Errorf("failed to stage item %q: %w", item.ID, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit catalog seed: %w", err)
	}
	return nil
}

func (s *PebbleCatalog) Lookup(_ context.Context, id string) (Item, bool, error) {
	data, closer, err := s.db.Get(itemKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return Item{}, false, nil
	}
	if err != nil {
		return Item{}, false, fmt.Errorf("failed to get item: %w", err)
	}
	defer closer.Close()

	var item Item
	if err := json.Unmarshal(data, &item); err != nil {
		return Item{}, false, fmt.Errorf("failed to unmarshal item %q: %w", id, err)
	}
	return item, true, nil
}

func (s *PebbleCatalog) List(_ context.Context) ([]Item, error) {
	prefix := []byte(prefixItem)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog iterator: %w", err)
	}
	defer iter.Close()

	var items []Item
	for iter.First(); iter.Valid(); iter.Next() {
		var item Item
		if err := json.Unmarshal(iter.Value(), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item at %q: %w", iter.Key(), err)
		}
		items = append(items, item)
	}
	return items, nil
}

var _ Catalog = (*PebbleCatalog)(nil)
