package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository provides an in-memory order store for development and tests.
type Repository struct {
	mu          sync.RWMutex
	orders      map[int64]*domain.Order
	byNumber    map[string]int64
	nextID      int64
	nextLineID  int64
	nextPayment int64
}

// NewRepository constructs an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		orders:   map[int64]*domain.Order{},
		byNumber: map[string]int64{},
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byNumber[order.Number]; exists {
		return nil, errors.New("order number already exists")
	}
	stored := order.Clone()
	r.nextID++
	stored.ID = r.nextID
	for i := range stored.Lines {
		r.nextLineID++
		stored.Lines[i].ID = r.nextLineID
	}
	r.assignPaymentID(stored)
	r.orders[stored.ID] = stored
	r.byNumber[stored.Number] = stored.ID
	return stored.Clone(), nil
}

// Update replaces the stored order when its status still equals expected.
func (r *Repository) Update(_ context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if current.Status != expected {
		return nil, ports.ErrConflict
	}
	stored := order.Clone()
	stored.Number = current.Number
	stored.CreatedAt = current.CreatedAt
	r.assignPaymentID(stored)
	r.orders[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) GetByNumber(_ context.Context, number string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.orders[id].Clone(), nil
}

func (r *Repository) List(_ context.Context, filter ports.ListFilter) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	matches := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.CustomerID != nil && (order.CustomerID == nil || *order.CustomerID != *filter.CustomerID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		matches = append(matches, order.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *domain.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	total := int64(len(matches))
	start := min(max(filter.Offset, 0), len(matches))
	end := len(matches)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(matches))
	}
	return matches[start:end], total, nil
}

func (r *Repository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return ports.ErrNotFound
	}
	delete(r.byNumber, order.Number)
	delete(r.orders, id)
	return nil
}

func (r *Repository) assignPaymentID(order *domain.Order) {
	if order.Payment != nil && order.Payment.ID == 0 {
		r.nextPayment++
		order.Payment.ID = r.nextPayment
	}
}
