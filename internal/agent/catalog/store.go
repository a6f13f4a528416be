// Package catalog holds the read-only product catalog queried by the assistant's functions.
package catalog

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
)

// Store indexes products by id and by case-insensitive name.
// It is immutable after New and safe for concurrent reads.
type Store struct {
	products []model.Product
	byID     map[string]int
	byName   map[string]int
}

// New validates products and builds the store. Every invalid record, every
// duplicate id or name and every id that equals another product's name is
// reported in the returned error.
func New(products []model.Product) (*Store, error) {
	s := &Store{
		products: make([]model.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
		byName:   make(map[string]int, len(products)),
	}

	var result *multierror.Error
	for i, p := range products {
		p.ID = strings.TrimSpace(p.ID)
		p.Name = strings.TrimSpace(p.Name)
		if err := p.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, dup := s.byID[normalize(p.ID)]; dup {
			result = multierror.Append(result, fmt.Errorf("record %d: duplicate id %q", i, p.ID))
			continue
		}
		if _, dup := s.byName[normalize(p.Name)]; dup {
			result = multierror.Append(result, fmt.Errorf("record %d: duplicate name %q", i, p.Name))
			continue
		}
		// ids and names share one lookup namespace
		if _, clash := s.byName[normalize(p.ID)]; clash {
			result = multierror.Append(result, fmt.Errorf("record %d: id %q collides with a product name", i, p.ID))
			continue
		}
		if _, clash := s.byID[normalize(p.Name)]; clash {
			result = multierror.Append(result, fmt.Errorf("record %d: name %q collides with a product id", i, p.Name))
			continue
		}
		idx := len(s.products)
		s.products = append(s.products, p)
		s.byID[normalize(p.ID)] = idx
		s.byName[normalize(p.Name)] = idx
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return s, nil
}

// Lookup finds a product by id, falling back to its name.
func (s *Store) Lookup(identifier string) (model.Product, error) {
	key := normalize(identifier)
	if key == "" {
		return model.Product{}, errx.NotFound(identifier)
	}
	if idx, ok := s.byID[key]; ok {
		return s.products[idx], nil
	}
	if idx, ok := s.byName[key]; ok {
		return s.products[idx], nil
	}
	return model.Product{}, errx.NotFound(identifier)
}

// CheckStock returns the number of units available for the product.
func (s *Store) CheckStock(identifier string) (int, error) {
	p, err := s.Lookup(identifier)
	if err != nil {
		return 0, err
	}
	return p.StockCount, nil
}

// Products returns a copy of the catalog in load order.
func (s *Store) Products() []model.Product {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Len() int {
	return len(s.products)
}

// ids are matched case-insensitively too; "sku-123" and "SKU-123" are the same product
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
