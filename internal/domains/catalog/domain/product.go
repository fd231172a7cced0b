package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName     = errors.New("product name is required")
	ErrEmptyRef      = errors.New("product reference is required")
	ErrNegativePrice = errors.New("product price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
	ErrInvalidQty    = errors.New("quantity must be greater than zero")
)

// Product is the catalog entry whose stock the order core coordinates.
type Product struct {
	ID        int64
	Reference string
	Name      string
	Price     decimal.Decimal
	Stock     int
	Available bool
}

// NewProduct builds a product and derives availability from stock.
func NewProduct(id int64, reference, name string, price decimal.Decimal, stock int) (*Product, error) {
	p := &Product{ID: id, Reference: strings.TrimSpace(reference), Name: strings.TrimSpace(name), Price: price.Round(2)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate enforces catalog invariants.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Reference == "" {
		return ErrEmptyRef
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// SetStock assigns an absolute stock level and recomputes availability.
func (p *Product) SetStock(qty int) error {
	if qty < 0 {
		return ErrNegativeStock
	}
	p.Stock = qty
	p.Available = qty > 0
	return nil
}

// CanSupply reports whether qty units can be taken right now.
func (p *Product) CanSupply(qty int) bool {
	return p.Available && p.Stock >= qty
}
