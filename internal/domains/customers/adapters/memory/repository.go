package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/go-gin-orders-api/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/customers/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory customer adapter keyed by id with a unique email index.
type Repository struct {
	mu        sync.RWMutex
	customers map[int64]*domain.Customer
	byEmail   map[string]int64
	nextID    int64
}

func NewRepository() *Repository {
	return &Repository{
		customers: map[int64]*domain.Customer{},
		byEmail:   map[string]int64{},
	}
}

func (r *Repository) Save(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	clone := *customer
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byEmail[clone.Email]; ok && owner != clone.ID {
		return nil, ports.ErrDuplicateEmail
	}
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	if prev, ok := r.customers[clone.ID]; ok && prev.Email != clone.Email {
		delete(r.byEmail, prev.Email)
	}
	r.customers[clone.ID] = &clone
	r.byEmail[clone.Email] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *customer
	return &clone, nil
}
