//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	catalogpostgres "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	orderscatalog "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/catalog"
	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderstypes "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

type stack struct {
	db      *gorm.DB
	catalog *catalogapp.Service
	repo    *orderspostgres.Repository
	log     *orderspostgres.RestorationLog
	svc     *ordersapp.Service
}

func newStack(db *gorm.DB) stack {
	return newStackWithKeys(db, orderspostgres.NewIdempotencyStore(db))
}

func newStackWithKeys(db *gorm.DB, keys ports.IdempotencyStore) stack {
	catalog := catalogapp.NewService(catalogpostgres.NewRepository(db))
	repo := orderspostgres.NewRepository(db)
	log := orderspostgres.NewRestorationLog(db)
	svc := ordersapp.NewService(repo, orderscatalog.NewLedger(catalog),
		ordersapp.WithUnitOfWork(platformpostgres.NewUnitOfWork(db)),
		ordersapp.WithRestorationLog(log),
		ordersapp.WithIdempotencyStore(keys),
	)
	return stack{db: db, catalog: catalog, repo: repo, log: log, svc: svc}
}

func (s stack) seedProduct(t *testing.T, ref string, price int64, stock int) int64 {
	t.Helper()
	product, err := catalogdomain.NewProduct(0, ref, "Product "+ref, decimal.NewFromInt(price), stock)
	require.NoError(t, err)
	saved, err := s.catalog.SaveProduct(context.Background(), product)
	require.NoError(t, err)
	return saved.ID
}

func (s stack) stockOf(t *testing.T, id int64) int {
	t.Helper()
	product, err := s.catalog.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func guestOrder(lines ...orderstypes.LineInput) orderstypes.CreateOrderInput {
	return orderstypes.CreateOrderInput{
		Guest:        &domain.GuestContact{FirstName: "Awa", LastName: "Diop", Email: "awa@example.com"},
		DeliveryMode: "HOME_DELIVERY",
		Address: domain.Address{
			FirstName: "Awa",
			LastName:  "Diop",
			Line1:     "12 Rue Carnot",
			City:      "Dakar",
			Phone:     "+221770000000",
		},
		Lines: lines,
	}
}

func TestPostgresOrders_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	s := newStack(db)
	ctx := context.Background()
	productID := s.seedProduct(t, "BAG-01", 20000, 10)

	input := guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 2})
	input.DeliveryMode = "EXPRESS"
	order, err := s.svc.CreateOrder(ctx, input)
	require.NoError(t, err)
	require.True(t, order.Total.Equal(decimal.NewFromInt(45000)))
	require.Equal(t, 8, s.stockOf(t, productID))

	byNumber, err := s.svc.GetOrderByNumber(ctx, order.Number)
	require.NoError(t, err)
	require.Equal(t, order.ID, byNumber.ID)
	require.Len(t, byNumber.Lines, 1)
	assert.Equal(t, "awa@example.com", byNumber.Guest.Email)
	assert.True(t, byNumber.Lines[0].UnitPrice.Equal(decimal.NewFromInt(20000)))

	paid, err := s.svc.ConfirmPayment(ctx, orderstypes.ConfirmPaymentInput{OrderID: order.ID, Method: "ORANGE_MONEY", GatewayReference: "OM-1"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.Payment)
	require.True(t, paid.Payment.Amount.Equal(decimal.NewFromInt(45000)))

	replay, err := s.svc.ConfirmPayment(ctx, orderstypes.ConfirmPaymentInput{OrderID: order.ID, Method: "ORANGE_MONEY", GatewayReference: "OM-1"})
	require.NoError(t, err)
	require.Equal(t, paid.Payment.ID, replay.Payment.ID)

	cancelled, err := s.svc.CancelOrder(ctx, orderstypes.CancelOrderInput{OrderID: order.ID, Reason: "customer request"})
	require.NoError(t, err)
	require.Equal(t, "customer request", cancelled.CancellationReason)
	require.Equal(t, 10, s.stockOf(t, productID))

	require.NoError(t, s.svc.DeleteOrder(ctx, orderstypes.OrderIdentifier{ID: order.ID}))
	_, err = s.svc.GetOrder(ctx, orderstypes.OrderIdentifier{ID: order.ID})
	require.ErrorIs(t, err, ports.ErrNotFound)

	var lines int64
	require.NoError(t, db.Table("order_lines").Where("order_id = ?", order.ID).Count(&lines).Error)
	require.Zero(t, lines)
}

func TestPostgresOrders_UpdateRejectsStaleStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	s := newStack(db)
	ctx := context.Background()
	productID := s.seedProduct(t, "CAP-01", 5000, 5)

	order, err := s.svc.CreateOrder(ctx, guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 1}))
	require.NoError(t, err)

	stale := order.Clone()
	_, err = s.svc.UpdateStatus(ctx, orderstypes.UpdateStatusInput{OrderID: order.ID, Status: "CONFIRMED"})
	require.NoError(t, err)

	stale.Status = domain.StatusCancelled
	_, err = s.repo.Update(ctx, stale, domain.StatusPending)
	require.ErrorIs(t, err, ports.ErrConflict)

	_, err = s.repo.Update(ctx, &domain.Order{ID: 9999, Status: domain.StatusConfirmed}, domain.StatusPending)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresOrders_ListFiltersByStatusAndCustomer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	s := newStack(db)
	ctx := context.Background()
	productID := s.seedProduct(t, "MUG-01", 3000, 50)

	var ids []int64
	for i := 0; i < 4; i++ {
		order, err := s.svc.CreateOrder(ctx, guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 1}))
		require.NoError(t, err)
		ids = append(ids, order.ID)
	}
	_, err := s.svc.UpdateStatus(ctx, orderstypes.UpdateStatusInput{OrderID: ids[1], Status: "CONFIRMED"})
	require.NoError(t, err)
	_, err = s.svc.CancelOrder(ctx, orderstypes.CancelOrderInput{OrderID: ids[2], Reason: "duplicate"})
	require.NoError(t, err)

	orders, total, err := s.repo.List(ctx, ports.ListFilter{
		Statuses: []domain.Status{domain.StatusConfirmed, domain.StatusCancelled},
		Limit:    10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, orders, 2)
	assert.Equal(t, ids[2], orders[0].ID)
	assert.Equal(t, ids[1], orders[1].ID)

	page, err := s.svc.ListOrders(ctx, orderstypes.ListOrdersInput{Page: 1, Size: 3})
	require.NoError(t, err)
	require.Equal(t, int64(4), page.TotalItems)
	require.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)

	customer := int64(77)
	_, total, err = s.repo.List(ctx, ports.ListFilter{CustomerID: &customer})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestPostgresOrders_ConcurrentOrdersNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	s := newStack(db)
	ctx := context.Background()
	productID := s.seedProduct(t, "LAST-UNITS", 1000, 5)

	var g errgroup.Group
	results := make([]error, 12)
	for i := range results {
		g.Go(func() error {
			_, err := s.svc.CreateOrder(ctx, guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 1}))
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, errors.Is(err, ports.ErrInsufficientStock), "unexpected error: %v", err)
	}
	require.Equal(t, 5, succeeded)
	require.Zero(t, s.stockOf(t, productID))

	_, total, err := s.repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
}

// barrierKeys makes the first callers of Get wait for each other, so every one
// of them misses the key and races to claim it.
type barrierKeys struct {
	ports.IdempotencyStore
	callers int32
	calls   atomic.Int32
	arrived sync.WaitGroup
}

func newBarrierKeys(inner ports.IdempotencyStore, callers int) *barrierKeys {
	k := &barrierKeys{IdempotencyStore: inner, callers: int32(callers)}
	k.arrived.Add(callers)
	return k
}

func (k *barrierKeys) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if k.calls.Add(1) <= k.callers {
		k.arrived.Done()
		k.arrived.Wait()
	}
	return k.IdempotencyStore.Get(ctx, key)
}

func TestPostgresOrders_ConcurrentSameKeyReplaysWinner(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	s := newStackWithKeys(db, newBarrierKeys(orderspostgres.NewIdempotencyStore(db), 2))
	ctx := context.Background()
	productID := s.seedProduct(t, "KEY-RACE", 1000, 10)
	input := guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 3})
	input.IdempotencyKey = "checkout-race"

	var g errgroup.Group
	orders := make([]*domain.Order, 2)
	for i := range orders {
		g.Go(func() error {
			order, err := s.svc.CreateOrder(ctx, input)
			orders[i] = order
			return err
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, orders[0].ID, orders[1].ID)
	require.Equal(t, 7, s.stockOf(t, productID))

	_, total, err := s.repo.List(ctx, ports.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	other := guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 1})
	other.IdempotencyKey = "checkout-race"
	_, err = s.svc.CreateOrder(ctx, other)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, 7, s.stockOf(t, productID))
}

func TestPostgresOrders_TrackingNumberIsUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	s := newStack(db)
	ctx := context.Background()
	productID := s.seedProduct(t, "TRK-ITEM", 1000, 10)

	shipped := make([]*domain.Order, 2)
	for i := range shipped {
		order, err := s.svc.CreateOrder(ctx, guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 1}))
		require.NoError(t, err)
		_, err = s.svc.ConfirmPayment(ctx, orderstypes.ConfirmPaymentInput{OrderID: order.ID, Method: "CASH", GatewayReference: fmt.Sprintf("CASH-%d", i)})
		require.NoError(t, err)
		for _, status := range []string{"PREPARING", "SHIPPED"} {
			order, err = s.svc.UpdateStatus(ctx, orderstypes.UpdateStatusInput{OrderID: order.ID, Status: status})
			require.NoError(t, err)
		}
		require.Regexp(t, `^TRK-[0-9A-F]{32}$`, order.TrackingNumber)
		shipped[i] = order
	}
	require.NotEqual(t, shipped[0].TrackingNumber, shipped[1].TrackingNumber)

	// Orders that never shipped share the empty value without tripping the index.
	for range 2 {
		_, err := s.svc.CreateOrder(ctx, guestOrder(orderstypes.LineInput{ProductID: productID, Quantity: 1}))
		require.NoError(t, err)
	}

	clash := shipped[1].Clone()
	clash.TrackingNumber = shipped[0].TrackingNumber
	_, err := s.repo.Update(ctx, clash, domain.StatusShipped)
	require.ErrorIs(t, err, ports.ErrConflict)
}

func TestPostgresRestorationLog_PendingAndResolve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupPostgresContainer(t)
	defer cleanup()
	log := orderspostgres.NewRestorationLog(db)
	ctx := context.Background()

	recorded, err := log.Record(ctx, domain.RestorationFailure{
		OrderID:     1,
		OrderNumber: "CMD-1",
		ProductID:   3,
		Quantity:    2,
		Reason:      "timeout",
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotZero(t, recorded.ID)
	require.Equal(t, 1, recorded.Attempts)

	require.NoError(t, log.MarkAttempt(ctx, recorded.ID, "still down"))
	pending, err := log.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Equal(t, "still down", pending[0].Reason)

	require.NoError(t, log.Resolve(ctx, recorded.ID))
	pending, err = log.Pending(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	require.ErrorIs(t, log.Resolve(ctx, 404), ports.ErrNotFound)
}
