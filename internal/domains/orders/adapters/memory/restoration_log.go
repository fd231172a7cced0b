package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.RestorationLog = (*RestorationLog)(nil)

// RestorationLog keeps failed stock restorations in memory.
type RestorationLog struct {
	mu       sync.Mutex
	failures map[int64]*domain.RestorationFailure
	nextID   int64
}

func NewRestorationLog() *RestorationLog {
	return &RestorationLog{
		failures: map[int64]*domain.RestorationFailure{},
	}
}

func (l *RestorationLog) Record(_ context.Context, failure domain.RestorationFailure) (*domain.RestorationFailure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	failure.ID = l.nextID
	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now().UTC()
	}
	if failure.Attempts == 0 {
		failure.Attempts = 1
	}
	failure.ResolvedAt = nil
	l.failures[failure.ID] = &failure
	out := failure
	return &out, nil
}

// Pending returns unresolved failures, oldest first.
func (l *RestorationLog) Pending(_ context.Context, limit int) ([]domain.RestorationFailure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.RestorationFailure, 0, len(l.failures))
	for _, failure := range l.failures {
		if failure.ResolvedAt == nil {
			out = append(out, *failure)
		}
	}
	slices.SortFunc(out, func(a, b domain.RestorationFailure) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (l *RestorationLog) MarkAttempt(_ context.Context, id int64, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	failure, ok := l.failures[id]
	if !ok {
		return ports.ErrNotFound
	}
	failure.Attempts++
	failure.Reason = reason
	return nil
}

func (l *RestorationLog) Resolve(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	failure, ok := l.failures[id]
	if !ok {
		return ports.ErrNotFound
	}
	resolved := time.Now().UTC()
	failure.ResolvedAt = &resolved
	return nil
}
