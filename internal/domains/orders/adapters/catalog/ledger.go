// Package catalog adapts the catalog bounded context to the stock ledger the order core consumes.
package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.StockLedger = (*Ledger)(nil)

// Ledger translates catalog products and errors into order-core terms.
type Ledger struct {
	catalog catalogports.Service
}

func NewLedger(catalog catalogports.Service) *Ledger {
	return &Ledger{catalog: catalog}
}

func (l *Ledger) GetProduct(ctx context.Context, id int64) (*ports.Product, error) {
	product, err := l.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err, id)
	}
	return &ports.Product{
		ID:        product.ID,
		Reference: product.Reference,
		Name:      product.Name,
		Price:     product.Price,
	}, nil
}

func (l *Ledger) CheckAvailable(ctx context.Context, id int64, qty int) (bool, error) {
	ok, err := l.catalog.CheckAvailable(ctx, id, qty)
	if err != nil {
		return false, translate(err, id)
	}
	return ok, nil
}

func (l *Ledger) Reserve(ctx context.Context, id int64, qty int) error {
	_, err := l.catalog.Reserve(ctx, id, qty)
	return translate(err, id)
}

func (l *Ledger) Release(ctx context.Context, id int64, qty int) error {
	_, err := l.catalog.Release(ctx, id, qty)
	return translate(err, id)
}

func translate(err error, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalogports.ErrNotFound):
		return fmt.Errorf("%w: %d", ports.ErrProductNotFound, id)
	case errors.Is(err, catalogports.ErrInsufficientStock):
		return fmt.Errorf("%w: product %d", ports.ErrInsufficientStock, id)
	}
	return err
}
