// Package catalog resolves item identifiers to a price and the seller that gets paid.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
)

// Item is a sellable catalog entry. Entries are read-only once loaded.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"name,omitempty"`
	Price         decimal.Decimal `json:"price"`          // In payment-token units, e.g. 12.50 USDC
	SellerAddress string          `json:"seller_address"` // Base58 wallet address of the seller
}

// Catalog is implemented by every backend in this package.
type Catalog interface {
	// Lookup returns the item for id. ok is false when no entry exists;
	// err is reserved for backend failures.
	Lookup(ctx context.Context, id string) (item Item, ok bool, err error)
	List(ctx context.Context) ([]Item, error)
}

//go:embed products.json
var defaultSeed []byte

// DefaultItems returns the built-in storefront table.
func DefaultItems() []Item {
	items, err := DecodeItems(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(fmt.Errorf("embedded catalog: %w", err))
	}
	return items
}

// DecodeItems parses a JSON array of items. Duplicate identifiers are rejected.
func DecodeItems(r io.Reader) ([]Item, error) {
	var items []Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return items, nil
}

// LoadItems reads a seed file, or returns DefaultItems when path is empty.
func LoadItems(path string) ([]Item, error) {
	if path == "" {
		return DefaultItems(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog seed: %w", err)
	}
	defer f.Close()
	return DecodeItems(f)
}
