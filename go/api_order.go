package ordersserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	orderhttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/http/mapper"
	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

const (
	// CustomerIDHeader carries the authenticated customer id injected by the gateway.
	CustomerIDHeader = "X-Customer-ID"
	// IdempotencyKeyHeader lets clients retry order submission safely.
	IdempotencyKeyHeader = "Idempotency-Key"
)

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
}

// NewOrderAPI creates an OrderAPI. When workflows is nil payments are confirmed inline.
func NewOrderAPI(service ports.Service, workflows ports.WorkflowOrchestrator) OrderAPI {
	return OrderAPI{service: service, workflows: workflows}
}

// Post /v1/orders
// Place an order for a customer or a guest
func (api *OrderAPI) CreateOrder(c *gin.Context) {
	customerID, ok := optionalCustomerHeader(c)
	if !ok {
		return
	}
	var payload orderhttpmapper.CreateOrder
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	order, err := api.service.CreateOrder(c.Request.Context(), orderhttpmapper.ToCreateOrderInput(payload, customerID, key))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.FromOrder(order))
}

// Get /v1/orders/:orderId
func (api *OrderAPI) GetOrderById(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), types.OrderIdentifier{ID: id})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// Get /v1/orders/by-number/:orderNumber
func (api *OrderAPI) GetOrderByNumber(c *gin.Context) {
	var number string
	err := runtime.BindStyledParameterWithOptions("simple", "orderNumber", c.Param("orderNumber"), &number,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// ListOrdersParams are the query parameters of GET /v1/orders.
type ListOrdersParams struct {
	CustomerID *int64
	Status     *[]string
	Page       *int
	Size       *int
}

// Get /v1/orders
// Lists orders newest first, optionally filtered by customer and statuses
func (api *OrderAPI) ListOrders(c *gin.Context) {
	var params ListOrdersParams
	query := c.Request.URL.Query()
	for _, bind := range []struct {
		name string
		dest interface{}
	}{
		{"customerId", &params.CustomerID},
		{"status", &params.Status},
		{"page", &params.Page},
		{"size", &params.Size},
	} {
		if err := runtime.BindQueryParameter("form", true, false, bind.name, query, bind.dest); err != nil {
			respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
			return
		}
	}
	input := types.ListOrdersInput{CustomerID: params.CustomerID}
	if params.Status != nil {
		input.Statuses = splitStatuses(*params.Status)
	}
	if params.Page != nil {
		input.Page = *params.Page
	}
	if params.Size != nil {
		input.Size = *params.Size
	}
	page, err := api.service.ListOrders(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrderPage(page))
}

// Patch /v1/orders/:orderId/status
// Moves an order along the lifecycle
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.UpdateStatus(c.Request.Context(), types.UpdateStatusInput{OrderID: id, Status: payload.Status})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// Post /v1/orders/:orderId/cancel
func (api *OrderAPI) CancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.Cancellation
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), types.CancelOrderInput{OrderID: id, Reason: payload.Reason})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

// Delete /v1/orders/:orderId
// Deletes a cancelled order
func (api *OrderAPI) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	if err := api.service.DeleteOrder(c.Request.Context(), types.OrderIdentifier{ID: id}); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/orders/:orderId/payment
// Records a confirmed gateway payment
func (api *OrderAPI) ConfirmPayment(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var payload orderhttpmapper.PaymentConfirmation
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := types.ConfirmPaymentInput{
		OrderID:          id,
		Method:           payload.Method,
		GatewayReference: payload.GatewayReference,
		Details:          payload.Details,
	}
	order, err := api.confirmPayment(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromOrder(order))
}

func (api *OrderAPI) confirmPayment(ctx context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	if api.workflows != nil {
		return api.workflows.ConfirmPayment(ctx, input)
	}
	return api.service.ConfirmPayment(ctx, input)
}

func optionalCustomerHeader(c *gin.Context) (*int64, bool) {
	raw := strings.TrimSpace(c.GetHeader(CustomerIDHeader))
	if raw == "" {
		return nil, true
	}
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", CustomerIDHeader, raw, &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
	if err != nil || id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(CustomerIDHeader+" must be a positive integer"))
		return nil, false
	}
	return &id, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return 0, false
	}
	return id, true
}

// splitStatuses accepts both repeated and comma separated status values.
func splitStatuses(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
