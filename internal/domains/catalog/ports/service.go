package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
)

// Service exposes the stock ledger to adapters and other bounded contexts.
type Service interface {
	SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CheckAvailable(ctx context.Context, id int64, qty int) (bool, error)
	AdjustStock(ctx context.Context, id int64, newQty int) (*domain.Product, error)
	Reserve(ctx context.Context, id int64, qty int) (*domain.Product, error)
	Release(ctx context.Context, id int64, qty int) (*domain.Product, error)
}
