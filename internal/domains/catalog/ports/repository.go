package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repository persists products and guards stock mutations.
type Repository interface {
	Save(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// SetStock writes an absolute stock level.
	SetStock(ctx context.Context, id int64, qty int) (*domain.Product, error)
	// Reserve decrements stock by qty only when enough units remain.
	// It returns ErrInsufficientStock without touching the row otherwise.
	Reserve(ctx context.Context, id int64, qty int) (*domain.Product, error)
	// Release increments stock by qty.
	Release(ctx context.Context, id int64, qty int) (*domain.Product, error)
}
