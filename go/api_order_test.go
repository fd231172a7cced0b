package ordersserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/application"
	catalogdomain "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
	customermemory "github.com/Apurer/go-gin-orders-api/internal/domains/customers/adapters/memory"
	customerapp "github.com/Apurer/go-gin-orders-api/internal/domains/customers/application"
	customerdomain "github.com/Apurer/go-gin-orders-api/internal/domains/customers/domain"
	ordercatalog "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/catalog"
	ordercustomers "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/customers"
	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	ordermemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

type testApp struct {
	router     *gin.Engine
	catalog    *catalogapp.Service
	customerID int64
	productID  int64
}

func newTestApp(t *testing.T, checks map[string]HealthCheck) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	catalog := catalogapp.NewService(catalogmemory.NewRepository())
	product, err := catalogdomain.NewProduct(0, "BOU-01", "Boubou", decimal.NewFromInt(20000), 10)
	require.NoError(t, err)
	product, err = catalog.SaveProduct(ctx, product)
	require.NoError(t, err)

	customers := customerapp.NewService(customermemory.NewRepository())
	customer, err := customerdomain.NewCustomer(0, "awa@example.com", "Awa", "Diop", "770000000")
	require.NoError(t, err)
	customer, err = customers.RegisterCustomer(ctx, customer)
	require.NoError(t, err)

	service := ordersapp.NewService(
		ordermemory.NewRepository(),
		ordercatalog.NewLedger(catalog),
		ordersapp.WithCustomerDirectory(ordercustomers.NewDirectory(customers)),
		ordersapp.WithRestorationLog(ordermemory.NewRestorationLog()),
		ordersapp.WithIdempotencyStore(ordermemory.NewIdempotencyStore()),
	)
	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		OrderAPI:   NewOrderAPI(service, orderworkflows.NewInlineOrderWorkflows(service)),
		ProductAPI: NewProductAPI(catalog),
		HealthAPI:  NewHealthAPI(checks),
	})
	return &testApp{router: router, catalog: catalog, customerID: customer.ID, productID: product.ID}
}

func (a *testApp) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) orderPayload(qty int) orderhttpmapper.CreateOrder {
	return orderhttpmapper.CreateOrder{
		DeliveryMode: "EXPRESS",
		Address: orderhttpmapper.Address{
			FirstName: "Awa", LastName: "Diop", Line1: "12 Rue Carnot", City: "Dakar", Phone: "770000000",
		},
		Lines: []orderhttpmapper.LineRequest{{ProductID: a.productID, Quantity: qty}},
	}
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) orderhttpmapper.Order {
	t.Helper()
	var order orderhttpmapper.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order), rec.Body.String())
	return order
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) apierrors.ProblemDetail {
	t.Helper()
	var problem apierrors.ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}

func TestCreateOrderForCustomerThenPay(t *testing.T) {
	app := newTestApp(t, nil)
	headers := map[string]string{CustomerIDHeader: fmt.Sprint(app.customerID)}

	rec := app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(2), headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeOrder(t, rec)
	assert.Equal(t, "PENDING", created.Status)
	assert.True(t, decimal.NewFromInt(45000).Equal(created.Total))
	require.NotNil(t, created.CustomerID)

	product, err := app.catalog.GetProduct(context.Background(), app.productID)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Stock)

	payment := orderhttpmapper.PaymentConfirmation{Method: "wave", GatewayReference: "gw-77"}
	rec = app.do(t, http.MethodPost, fmt.Sprintf("/v1/orders/%d/payment", created.ID), payment, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	paid := decodeOrder(t, rec)
	assert.Equal(t, "PAID", paid.Status)
	require.NotNil(t, paid.Payment)
	assert.True(t, decimal.NewFromInt(45000).Equal(paid.Payment.Amount))

	rec = app.do(t, http.MethodPost, fmt.Sprintf("/v1/orders/%d/payment", created.ID), payment, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/v1/orders/by-number/"+created.Number, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeOrder(t, rec).ID)
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	app := newTestApp(t, nil)
	payload := app.orderPayload(11)
	payload.Guest = &orderhttpmapper.GuestContact{Email: "guest@example.com"}

	rec := app.do(t, http.MethodPost, "/v1/orders", payload, nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeInsufficientStock, decodeProblem(t, rec).Type)
}

func TestCreateOrderValidation(t *testing.T) {
	app := newTestApp(t, nil)

	rec := app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(1), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "neither customer nor guest")
	assert.Equal(t, apierrors.TypeValidation, decodeProblem(t, rec).Type)

	rec = app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(1), map[string]string{CustomerIDHeader: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(1), map[string]string{CustomerIDHeader: "999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateOrderIdempotencyKey(t *testing.T) {
	app := newTestApp(t, nil)
	headers := map[string]string{CustomerIDHeader: fmt.Sprint(app.customerID), IdempotencyKeyHeader: "idem-1"}

	first := app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(2), headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(2), headers)
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, decodeOrder(t, first).ID, decodeOrder(t, second).ID)

	product, err := app.catalog.GetProduct(context.Background(), app.productID)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Stock)

	conflict := app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(3), headers)
	require.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, apierrors.TypeIdempotencyConflict, decodeProblem(t, conflict).Type)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t, nil)
	headers := map[string]string{CustomerIDHeader: fmt.Sprint(app.customerID)}
	created := decodeOrder(t, app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(3), headers))
	base := fmt.Sprintf("/v1/orders/%d", created.ID)

	rec := app.do(t, http.MethodPatch, base+"/status", orderhttpmapper.StatusUpdate{Status: "SHIPPED"}, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeInvalidTransition, decodeProblem(t, rec).Type)

	rec = app.do(t, http.MethodPatch, base+"/status", orderhttpmapper.StatusUpdate{Status: "bogus"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodDelete, base, nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierrors.TypeInvalidState, decodeProblem(t, rec).Type)

	rec = app.do(t, http.MethodPost, base+"/cancel", orderhttpmapper.Cancellation{Reason: ""}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, base+"/cancel", orderhttpmapper.Cancellation{Reason: "changed my mind"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decodeOrder(t, rec)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)

	product, err := app.catalog.GetProduct(context.Background(), app.productID)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)

	rec = app.do(t, http.MethodDelete, base, nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(t, http.MethodGet, base, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersFiltersAndPages(t *testing.T) {
	app := newTestApp(t, nil)
	headers := map[string]string{CustomerIDHeader: fmt.Sprint(app.customerID)}
	for i := 0; i < 3; i++ {
		rec := app.do(t, http.MethodPost, "/v1/orders", app.orderPayload(1), headers)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	first := decodeOrder(t, app.do(t, http.MethodGet, "/v1/orders/1", nil, nil))
	rec := app.do(t, http.MethodPost, "/v1/orders/1/cancel", orderhttpmapper.Cancellation{Reason: "dup"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, fmt.Sprintf("/v1/orders?customerId=%d&status=PENDING,CONFIRMED&page=0&size=1", app.customerID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page orderhttpmapper.OrderPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.NotEqual(t, first.ID, page.Items[0].ID)

	rec = app.do(t, http.MethodGet, "/v1/orders?page=abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductStockEndpoints(t *testing.T) {
	app := newTestApp(t, nil)
	path := fmt.Sprintf("/v1/products/%d", app.productID)

	qty := 4
	rec := app.do(t, http.MethodPut, path+"/stock", map[string]*int{"quantity": &qty}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(t, http.MethodGet, path, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(4), body["stock"])
	assert.Equal(t, "20000", body["price"])

	negative := -1
	rec = app.do(t, http.MethodPut, path+"/stock", map[string]*int{"quantity": &negative}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodPut, path+"/stock", map[string]any{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = app.do(t, http.MethodGet, "/v1/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthzReportsFailingChecks(t *testing.T) {
	app := newTestApp(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})

	rec := app.do(t, http.MethodGet, "/healthz", nil, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postgres":"ok"`)
	assert.Contains(t, rec.Body.String(), "degraded")
}
