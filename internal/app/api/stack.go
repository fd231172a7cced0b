package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	catalogobs "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/observability"
	catalogpostgres "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	customermemory "github.com/Apurer/go-gin-orders-api/internal/domains/customers/adapters/memory"
	customerpostgres "github.com/Apurer/go-gin-orders-api/internal/domains/customers/adapters/persistence/postgres"
	customerapp "github.com/Apurer/go-gin-orders-api/internal/domains/customers/application"
	customerports "github.com/Apurer/go-gin-orders-api/internal/domains/customers/ports"
	ordercache "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/cache"
	ordercatalog "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/catalog"
	ordercustomers "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/customers"
	orderkafka "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/events/kafka"
	ordermemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	platformredis "github.com/Apurer/go-gin-orders-api/internal/platform/redis"
)

// Stack is the assembled set of services shared by the api, worker and reconciler binaries.
type Stack struct {
	DB         *gorm.DB
	Redis      *goredis.Client
	Catalog    catalogports.Service
	Customers  customerports.Service
	Orders     ordersports.Service
	Reconciler *ordersapp.Reconciler

	closers []func()
}

// BuildStack wires repositories, collaborators and decorators. Postgres and
// Redis are optional: without them the stack runs on in-memory adapters and
// without a cache. reg may be nil when the process exposes no /metrics.
func BuildStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, reg prometheus.Registerer) (*Stack, error) {
	logger := effectiveLogger(instruments)
	policy, err := ResolveShippingPolicy(cfg)
	if err != nil {
		return nil, err
	}

	stack := &Stack{}
	db, closeDB := platformpostgres.ConnectOptional(ctx, cfg.PostgresDSN, logger)
	stack.closers = append(stack.closers, closeDB)
	stack.DB = db
	if stack.DB != nil && cfg.MigrateOnStart {
		if err := migrations.Run(stack.DB); err != nil {
			stack.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var (
		catalogRepo  catalogports.Repository
		customerRepo customerports.Repository
		orderRepo    ordersports.Repository
		restorations ordersports.RestorationLog
		idempotency  ordersports.IdempotencyStore
		uow          ordersports.UnitOfWork
	)
	if stack.DB != nil {
		catalogRepo = catalogpostgres.NewRepository(stack.DB)
		customerRepo = customerpostgres.NewRepository(stack.DB)
		orderRepo = orderpostgres.NewRepository(stack.DB)
		restorations = orderpostgres.NewRestorationLog(stack.DB)
		idempotency = orderpostgres.NewIdempotencyStore(stack.DB)
		uow = platformpostgres.NewUnitOfWork(stack.DB)
	} else {
		catalogRepo = catalogmemory.NewRepository()
		customerRepo = customermemory.NewRepository()
		orderRepo = ordermemory.NewRepository()
		restorations = ordermemory.NewRestorationLog()
		idempotency = ordermemory.NewIdempotencyStore()
	}

	countedRestorations, err := orderobs.NewRestorationLog(restorations, reg, logger)
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("failed to register restoration metrics: %w", err)
	}

	stack.Catalog = catalogobs.New(
		catalogapp.NewService(catalogRepo),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	stack.Customers = customerapp.NewService(customerRepo)
	ledger := ordercatalog.NewLedger(stack.Catalog)

	opts := []ordersapp.Option{
		ordersapp.WithCustomerDirectory(ordercustomers.NewDirectory(stack.Customers)),
		ordersapp.WithRestorationLog(countedRestorations),
		ordersapp.WithIdempotencyStore(idempotency),
		ordersapp.WithShippingPolicy(policy),
		ordersapp.WithLogger(logger),
	}
	if uow != nil {
		opts = append(opts, ordersapp.WithUnitOfWork(uow))
	}
	if len(cfg.KafkaBrokers) > 0 {
		writer := orderkafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		publisher := orderkafka.NewPublisher(writer, logger)
		stack.closers = append(stack.closers, func() { _ = publisher.Close() })
		opts = append(opts, ordersapp.WithEventPublisher(publisher))
		logger.Info("order events published to kafka", slog.String("topic", cfg.KafkaOrderTopic))
	}
	core := ordersapp.NewService(orderRepo, ledger, opts...)

	var orders ordersports.Service = orderobs.New(
		core,
		orderobs.WithLogger(logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	redisClient, closeRedis := platformredis.ConnectOptional(ctx, cfg.RedisAddr, logger)
	stack.closers = append(stack.closers, closeRedis)
	if redisClient != nil {
		stack.Redis = redisClient
		orders = ordercache.New(orders, ordercache.NewRedisCache(redisClient), cfg.OrderCacheTTL, logger)
	}
	stack.Orders = orders
	stack.Reconciler = ordersapp.NewReconciler(countedRestorations, ledger, logger)
	return stack, nil
}

// Close releases connections in reverse order of acquisition.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
