package model

import "fmt"

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	StockCount  int     `json:"stock_count"`
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.StockCount > 0
}

// Validate checks a single record; uniqueness is the catalog's concern.
func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("product %q: id is empty", p.Name)
	case p.Name == "":
		return fmt.Errorf("product %s: name is empty", p.ID)
	case p.Price < 0:
		return fmt.Errorf("product %s: negative price %.2f", p.ID, p.Price)
	case p.StockCount < 0:
		return fmt.Errorf("product %s: negative stock count %d", p.ID, p.StockCount)
	}
	return nil
}
