package workflows

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

type stubService struct {
	ports.Service
	confirmed []types.ConfirmPaymentInput
}

func (s *stubService) ConfirmPayment(_ context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	s.confirmed = append(s.confirmed, input)
	return &domain.Order{ID: input.OrderID, Status: domain.StatusPaid}, nil
}

func TestInlineOrderWorkflowsDelegatesToService(t *testing.T) {
	svc := &stubService{}
	order, err := NewInlineOrderWorkflows(svc).ConfirmPayment(context.Background(), types.ConfirmPaymentInput{OrderID: 4, GatewayReference: "gw"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, order.Status)
	require.Len(t, svc.confirmed, 1)
}

func TestInlineOrderWorkflowsRequiresService(t *testing.T) {
	var o *InlineOrderWorkflows
	_, err := o.ConfirmPayment(context.Background(), types.ConfirmPaymentInput{})
	require.Error(t, err)
}

func TestPaymentWorkflowIDIsStablePerGatewayReference(t *testing.T) {
	a := buildPaymentWorkflowID(types.ConfirmPaymentInput{OrderID: 1, GatewayReference: "gw-1"})
	b := buildPaymentWorkflowID(types.ConfirmPaymentInput{OrderID: 1, GatewayReference: " gw-1 "})
	c := buildPaymentWorkflowID(types.ConfirmPaymentInput{OrderID: 1, GatewayReference: "gw-2"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^order-payment-1-[0-9a-f]{16}$`, a)
}
