package application

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
)

// Service implements the product stock ledger.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// SaveProduct validates and stores a catalog entry.
func (s *Service) SaveProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.SetStock(product.Stock); err != nil {
		return nil, mapError(err)
	}
	if err := product.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, product)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CheckAvailable is true iff the product exists, is available and holds at least qty units.
func (s *Service) CheckAvailable(ctx context.Context, id int64, qty int) (bool, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return product.CanSupply(qty), nil
}

// AdjustStock overwrites the stock level. Concurrent callers race; order flows use Reserve/Release.
func (s *Service) AdjustStock(ctx context.Context, id int64, newQty int) (*domain.Product, error) {
	if newQty < 0 {
		return nil, mapError(domain.ErrNegativeStock)
	}
	return s.repo.SetStock(ctx, id, newQty)
}

func (s *Service) Reserve(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, mapError(domain.ErrInvalidQty)
	}
	return s.repo.Reserve(ctx, id, qty)
}

func (s *Service) Release(ctx context.Context, id int64, qty int) (*domain.Product, error) {
	if qty <= 0 {
		return nil, mapError(domain.ErrInvalidQty)
	}
	return s.repo.Release(ctx, id, qty)
}

var _ ports.Service = (*Service)(nil)
