package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore maps Idempotency-Key values to the orders they created.
// The first Save for a key wins; later saves must name the same request and order.
type IdempotencyStore struct {
	mu     sync.Mutex
	claims map[string]ports.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{claims: map[string]ports.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	claim, ok := s.claims[key]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return &claim, nil
}

func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claim, ok := s.claims[record.Key]; ok {
		if claim.RequestHash == record.RequestHash && claim.OrderID == record.OrderID {
			return &claim, nil
		}
		return &claim, ports.ErrIdempotencyConflict
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	s.claims[record.Key] = record
	return &record, nil
}
