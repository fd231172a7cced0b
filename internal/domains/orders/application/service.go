package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/shared/pagination"
)

// errUnchanged lets a mutation skip the write while still returning the loaded order.
var errUnchanged = errors.New("order unchanged")

// Service orchestrates order assembly, lifecycle and payment use cases.
type Service struct {
	repo         ports.Repository
	stock        ports.StockLedger
	customers    ports.CustomerDirectory
	uow          ports.UnitOfWork
	events       ports.EventPublisher
	restorations ports.RestorationLog
	idempotency  ports.IdempotencyStore
	ids          ports.IdentifierGenerator
	shipping     domain.ShippingPolicy
	now          func() time.Time
	logger       *slog.Logger
}

type Option func(*Service)

func WithCustomerDirectory(directory ports.CustomerDirectory) Option {
	return func(s *Service) {
		s.customers = directory
	}
}

func WithUnitOfWork(uow ports.UnitOfWork) Option {
	return func(s *Service) {
		if uow != nil {
			s.uow = uow
		}
	}
}

func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

func WithRestorationLog(log ports.RestorationLog) Option {
	return func(s *Service) {
		s.restorations = log
	}
}

// WithIdempotencyStore enables Idempotency-Key replay for CreateOrder.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

func WithIdentifiers(ids ports.IdentifierGenerator) Option {
	return func(s *Service) {
		if ids != nil {
			s.ids = ids
		}
	}
}

func WithShippingPolicy(policy domain.ShippingPolicy) Option {
	return func(s *Service) {
		s.shipping = policy
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the order core with its repository and stock ledger.
func NewService(repo ports.Repository, stock ports.StockLedger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		stock:    stock,
		ids:      NewIdentifiers(),
		shipping: domain.DefaultShippingPolicy(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.uow == nil {
		s.uow = compensatingUnitOfWork{logger: s.logger}
	}
	return s
}

// CreateOrder validates the request, freezes product prices into lines, and
// persists a PENDING order while reserving stock in the same unit of work.
func (s *Service) CreateOrder(ctx context.Context, input types.CreateOrderInput) (*domain.Order, error) {
	mode, err := domain.ParseDeliveryMode(input.DeliveryMode)
	if err != nil {
		return nil, mapError(err)
	}
	guest, err := validateCreateInput(input)
	if err != nil {
		return nil, mapError(err)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		fingerprint, err = FingerprintCreateOrder(input)
		if err != nil {
			return nil, err
		}
		existing, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.replay(ctx, existing, fingerprint)
		}
	}
	if input.CustomerID != nil && s.customers != nil {
		if _, err := s.customers.GetCustomer(ctx, *input.CustomerID); err != nil {
			return nil, mapError(err)
		}
	}
	for _, req := range aggregateQuantities(input.Lines) {
		ok, err := s.stock.CheckAvailable(ctx, req.ProductID, req.Quantity)
		if err != nil {
			return nil, mapError(err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: product %d cannot supply %d units", ports.ErrInsufficientStock, req.ProductID, req.Quantity)
		}
	}

	number := s.ids.OrderNumber()
	fee := s.shipping.FeeFor(mode)
	lines := make([]domain.LineItem, 0, len(input.Lines))
	for _, in := range input.Lines {
		product, err := s.stock.GetProduct(ctx, in.ProductID)
		if err != nil {
			return nil, mapError(err)
		}
		line, err := domain.NewLineItem(product.ID, product.Reference, product.Name, in.Quantity, product.Price)
		if err != nil {
			return nil, mapError(err)
		}
		lines = append(lines, line)
	}
	order, err := domain.NewOrder(domain.Draft{
		Number:       number,
		CustomerID:   input.CustomerID,
		Guest:        guest,
		DeliveryMode: mode,
		Address:      input.Address,
		Comment:      input.Comment,
		Lines:        lines,
		ShippingFee:  fee,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, mapError(err)
	}

	var created *domain.Order
	err = s.uow.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.reserveLines(ctx, order.Lines); err != nil {
			return err
		}
		created, err = s.repo.Create(ctx, order)
		if err != nil {
			return err
		}
		id := created.ID
		onRollback(ctx, "delete order", func(ctx context.Context) error {
			return s.repo.Delete(ctx, id)
		})
		if fingerprint == "" {
			return nil
		}
		now := s.now()
		_, err = s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: fingerprint,
			OrderID:     created.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return err
	})
	if err != nil {
		if fingerprint != "" && errors.Is(err, ports.ErrIdempotencyConflict) {
			// A concurrent request claimed the key first; its order is the answer.
			return s.replayClaimed(ctx, key, fingerprint)
		}
		return nil, mapError(err)
	}
	s.publish(ctx, s.newEvent(domain.EventOrderCreated, created, map[string]string{
		"total":        created.Total.StringFixed(2),
		"deliveryMode": string(created.DeliveryMode),
	}))
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, number string) (*domain.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, mapError(domain.ErrEmptyOrderNumber)
	}
	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

// ListOrders returns orders newest first, optionally narrowed by customer and statuses.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	statuses := make([]domain.Status, 0, len(input.Statuses))
	for _, raw := range input.Statuses {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		statuses = append(statuses, status)
	}
	req := pagination.Normalize(input.Page, input.Size)
	items, total, err := s.repo.List(ctx, ports.ListFilter{
		CustomerID: input.CustomerID,
		Statuses:   statuses,
		Offset:     req.Offset(),
		Limit:      req.Size,
	})
	if err != nil {
		return nil, mapError(err)
	}
	page := pagination.New(items, req, total)
	return &page, nil
}

// UpdateStatus applies one transition from the lifecycle table together with its side effects.
func (s *Service) UpdateStatus(ctx context.Context, input types.UpdateStatusInput) (*domain.Order, error) {
	next, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	updated, previous, err := s.mutate(ctx, input.OrderID, func(order *domain.Order, at time.Time) error {
		if err := order.TransitionTo(next, at); err != nil {
			return err
		}
		if next == domain.StatusShipped {
			order.AssignTrackingNumber(s.ids.TrackingNumber())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if updated.Status == domain.StatusCancelled {
		s.restoreStock(ctx, updated)
	}
	s.publishTransition(ctx, updated, previous)
	return updated, nil
}

// CancelOrder cancels with a mandatory reason and returns reserved stock.
func (s *Service) CancelOrder(ctx context.Context, input types.CancelOrderInput) (*domain.Order, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, mapError(domain.ErrEmptyReason)
	}
	updated, previous, err := s.mutate(ctx, input.OrderID, func(order *domain.Order, at time.Time) error {
		return order.Cancel(input.Reason, at)
	})
	if err != nil {
		return nil, err
	}
	s.restoreStock(ctx, updated)
	s.publishTransition(ctx, updated, previous)
	return updated, nil
}

// DeleteOrder hard-deletes a cancelled order with its lines and payment.
func (s *Service) DeleteOrder(ctx context.Context, input types.OrderIdentifier) error {
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if err := order.EnsureDeletable(); err != nil {
			return err
		}
		return s.repo.Delete(ctx, input.ID)
	})
	return mapError(err)
}

// ConfirmPayment records a confirmed payment for the order total and marks it PAID.
// A repeated confirmation carrying the same gateway reference returns the order unchanged.
func (s *Service) ConfirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	method, err := domain.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, mapError(err)
	}
	replayed := false
	updated, previous, err := s.mutate(ctx, input.OrderID, func(order *domain.Order, at time.Time) error {
		if order.IsPaymentReplay(input.GatewayReference) {
			replayed = true
			return errUnchanged
		}
		payment, err := domain.NewConfirmedPayment(s.ids.PaymentReference(), method, order.Total, input.GatewayReference, input.Details, at)
		if err != nil {
			return err
		}
		return order.ConfirmPayment(payment, at)
	})
	if err != nil {
		return nil, err
	}
	if replayed {
		return updated, nil
	}
	events := []domain.Event{
		s.newEvent(domain.EventPaymentConfirmed, updated, map[string]string{
			"paymentReference": updated.Payment.Reference,
			"amount":           updated.Payment.Amount.StringFixed(2),
			"method":           string(updated.Payment.Method),
		}),
		s.newEvent(domain.EventOrderStatusChanged, updated, map[string]string{"previousStatus": string(previous)}),
	}
	s.publish(ctx, events...)
	return updated, nil
}

// mutate loads, changes and conditionally writes an order inside one unit of work.
func (s *Service) mutate(ctx context.Context, id int64, change func(order *domain.Order, at time.Time) error) (*domain.Order, domain.Status, error) {
	var (
		updated  *domain.Order
		previous domain.Status
	)
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		order, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		previous = order.Status
		if err := change(order, s.now()); err != nil {
			if errors.Is(err, errUnchanged) {
				updated = order
				return nil
			}
			return err
		}
		updated, err = s.repo.Update(ctx, order, previous)
		return err
	})
	if err != nil {
		return nil, "", mapError(err)
	}
	return updated, previous, nil
}

// reserveLines takes stock for every line. Each reservation is undone if the
// surrounding unit of work fails on a store that cannot roll back.
func (s *Service) reserveLines(ctx context.Context, lines []domain.LineItem) error {
	for _, line := range lines {
		if err := s.stock.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
		productID, qty := line.ProductID, line.Quantity
		onRollback(ctx, "release reservation", func(ctx context.Context) error {
			return s.stock.Release(ctx, productID, qty)
		})
	}
	return nil
}

// replay answers a retried submission with the order recorded under its key.
func (s *Service) replay(ctx context.Context, record *ports.IdempotencyRecord, fingerprint string) (*domain.Order, error) {
	if record.RequestHash != fingerprint {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.repo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) replayClaimed(ctx context.Context, key, fingerprint string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ports.ErrIdempotencyConflict
	}
	return s.replay(ctx, record, fingerprint)
}

// restoreStock returns every line of a cancelled order to stock. A failing line
// is logged, recorded for reconciliation, and does not stop the others.
func (s *Service) restoreStock(ctx context.Context, order *domain.Order) {
	for _, line := range order.Lines {
		err := s.stock.Release(ctx, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}
		s.logger.LogAttrs(ctx, slog.LevelError, "stock restoration failed",
			slog.String("order.number", order.Number),
			slog.Int64("product.id", line.ProductID),
			slog.Int("quantity", line.Quantity),
			slog.String("error", err.Error()))
		if s.restorations != nil {
			failure := domain.RestorationFailure{
				OrderID:     order.ID,
				OrderNumber: order.Number,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				Reason:      err.Error(),
				Attempts:    1,
				CreatedAt:   s.now(),
			}
			if _, recErr := s.restorations.Record(ctx, failure); recErr != nil {
				s.logger.LogAttrs(ctx, slog.LevelError, "failed to record stock restoration failure",
					slog.String("order.number", order.Number),
					slog.Int64("product.id", line.ProductID),
					slog.String("error", recErr.Error()))
			}
		}
		s.publish(ctx, s.newEvent(domain.EventStockRestorationFailed, order, map[string]string{
			"productId": strconv.FormatInt(line.ProductID, 10),
			"quantity":  strconv.Itoa(line.Quantity),
			"reason":    err.Error(),
		}))
	}
}

func (s *Service) publishTransition(ctx context.Context, order *domain.Order, previous domain.Status) {
	events := []domain.Event{
		s.newEvent(domain.EventOrderStatusChanged, order, map[string]string{"previousStatus": string(previous)}),
	}
	switch order.Status {
	case domain.StatusCancelled:
		events = append(events, s.newEvent(domain.EventOrderCancelled, order, map[string]string{"reason": order.CancellationReason}))
	case domain.StatusShipped:
		events[0].Attributes["trackingNumber"] = order.TrackingNumber
	}
	s.publish(ctx, events...)
}

func (s *Service) newEvent(eventType domain.EventType, order *domain.Order, attrs map[string]string) domain.Event {
	return domain.Event{
		ID:          s.ids.EventID(),
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Status:      order.Status,
		OccurredAt:  s.now(),
		Attributes:  attrs,
	}
}

// publish never fails the use case; delivery errors are logged.
func (s *Service) publish(ctx context.Context, events ...domain.Event) {
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order events",
			slog.String("event.type", string(events[0].Type)),
			slog.String("order.number", events[0].OrderNumber),
			slog.String("error", err.Error()))
	}
}

func validateCreateInput(input types.CreateOrderInput) (*domain.GuestContact, error) {
	if len(input.Lines) == 0 {
		return nil, domain.ErrNoLines
	}
	for _, line := range input.Lines {
		if line.ProductID <= 0 {
			return nil, domain.ErrInvalidProduct
		}
		if line.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
	}
	var guest *domain.GuestContact
	if input.Guest != nil {
		g := input.Guest.Normalize()
		guest = &g
	}
	if err := domain.ValidateBuyer(input.CustomerID, guest); err != nil {
		return nil, err
	}
	if err := input.Address.Normalize().Validate(); err != nil {
		return nil, err
	}
	return guest, nil
}

// aggregateQuantities sums quantities per product, keeping first-seen order.
func aggregateQuantities(lines []types.LineInput) []types.LineInput {
	index := map[int64]int{}
	out := make([]types.LineInput, 0, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}

var _ ports.Service = (*Service)(nil)
