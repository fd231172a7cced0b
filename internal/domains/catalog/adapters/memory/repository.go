package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory product store. Stock mutations hold the write lock
// for the whole check-and-set, so reservations never oversell.
type Repository struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
	nextID   int64
}

func NewRepository() *Repository {
	return &Repository{products: map[int64]*domain.Product{}}
}

func (r *Repository) Save(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	clone := *product
	if err := clone.SetStock(clone.Stock); err != nil {
		return nil, err
	}
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	r.products[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *Repository) SetStock(_ context.Context, id int64, qty int) (*domain.Product, error) {
	return r.mutate(id, func(p *domain.Product) error {
		return p.SetStock(qty)
	})
}

func (r *Repository) Reserve(_ context.Context, id int64, qty int) (*domain.Product, error) {
	return r.mutate(id, func(p *domain.Product) error {
		if !p.CanSupply(qty) {
			return ports.ErrInsufficientStock
		}
		return p.SetStock(p.Stock - qty)
	})
}

func (r *Repository) Release(_ context.Context, id int64, qty int) (*domain.Product, error) {
	return r.mutate(id, func(p *domain.Product) error {
		return p.SetStock(p.Stock + qty)
	})
}

func (r *Repository) mutate(id int64, fn func(*domain.Product) error) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *product
	if err := fn(&clone); err != nil {
		return nil, err
	}
	r.products[id] = &clone
	out := clone
	return &out, nil
}
