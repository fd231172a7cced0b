// Package cache adds read-through caching of single-order lookups.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformredis "github.com/Apurer/go-gin-orders-api/internal/platform/redis"
	goredis "github.com/redis/go-redis/v9"
)

// Namespace prefixes every order key. The API and the worker both write to it.
const Namespace = "orders"

const (
	opByID     = "order:id"
	opByNumber = "order:number"
)

// NewRedisCache returns the Redis keyspace shared by every process caching orders.
func NewRedisCache(client *goredis.Client) platformredis.Cache {
	return platformredis.NewCache(client, Namespace)
}

// Service caches GetOrder and GetOrderByNumber and evicts an order on every write.
// Cache failures degrade to the inner service.
type Service struct {
	inner  ports.Service
	cache  platformredis.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func New(inner ports.Service, cache platformredis.Cache, ttl time.Duration, logger *slog.Logger) ports.Service {
	if cache == nil {
		return inner
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	return s.inner.CreateOrder(ctx, input)
}

func (s *Service) GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	key := s.cache.GenerateKey(opByID, strconv.FormatInt(input.ID, 10))
	if order := s.load(ctx, key); order != nil {
		return order, nil
	}
	order, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	s.store(ctx, order)
	return order, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	key := s.cache.GenerateKey(opByNumber, number)
	if order := s.load(ctx, key); order != nil {
		return order, nil
	}
	order, err := s.inner.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	s.store(ctx, order)
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	return s.inner.ListOrders(ctx, input)
}

func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*domain.Order, error) {
	order, err := s.inner.UpdateStatus(ctx, input)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, order.ID, order.Number)
	return order, nil
}

func (s *Service) CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error) {
	order, err := s.inner.CancelOrder(ctx, input)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, order.ID, order.Number)
	return order, nil
}

func (s *Service) DeleteOrder(ctx context.Context, input types.OrderIdentifier) error {
	var number string
	if existing, err := s.inner.GetOrder(ctx, input); err == nil {
		number = existing.Number
	}
	if err := s.inner.DeleteOrder(ctx, input); err != nil {
		return err
	}
	s.evict(ctx, input.ID, number)
	return nil
}

func (s *Service) ConfirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	order, err := s.inner.ConfirmPayment(ctx, input)
	if err != nil {
		return nil, err
	}
	s.evict(ctx, order.ID, order.Number)
	return order, nil
}

func (s *Service) load(ctx context.Context, key string) *domain.Order {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil
	}
	if !ok {
		return nil
	}
	var order domain.Order
	if err := json.Unmarshal(payload, &order); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "discarding undecodable cached order", slog.String("key", key), slog.String("error", err.Error()))
		return nil
	}
	return &order
}

func (s *Service) store(ctx context.Context, order *domain.Order) {
	payload, err := json.Marshal(order)
	if err != nil {
		return
	}
	for _, key := range s.keys(order.ID, order.Number) {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "order cache write failed", slog.String("key", key), slog.String("error", err.Error()))
			return
		}
	}
}

func (s *Service) evict(ctx context.Context, id int64, number string) {
	if err := s.cache.Delete(ctx, s.keys(id, number)...); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order cache eviction failed", slog.Int64("order.id", id), slog.String("error", err.Error()))
	}
}

func (s *Service) keys(id int64, number string) []string {
	keys := []string{s.cache.GenerateKey(opByID, strconv.FormatInt(id, 10))}
	if number != "" {
		keys = append(keys, s.cache.GenerateKey(opByNumber, number))
	}
	return keys
}

var _ ports.Service = (*Service)(nil)
