package orders

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
)

type fakeOrders struct {
	ports.Service
	confirmCalls atomic.Int32
	confirmErr   error
	order        domain.Order
}

func (f *fakeOrders) ConfirmPayment(_ context.Context, input types.ConfirmPaymentInput) (*domain.Order, error) {
	f.confirmCalls.Add(1)
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	out := f.order
	out.ID = input.OrderID
	out.Status = domain.StatusPaid
	out.Payment = &domain.Payment{
		Reference:        "PAY-1",
		GatewayReference: input.GatewayReference,
		Method:           domain.PaymentWave,
		Status:           domain.PaymentStatusConfirmed,
		Amount:           out.Total,
	}
	f.order = out
	return &out, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, input types.OrderIdentifier) (*domain.Order, error) {
	if f.order.ID != input.ID {
		return nil, ports.ErrNotFound
	}
	out := f.order
	return &out, nil
}

func newWorkflowEnv(t *testing.T, svc ports.Service) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	acts := orderactivities.NewActivities(svc)
	env.RegisterWorkflowWithOptions(PaymentConfirmationWorkflow, workflow.RegisterOptions{Name: PaymentConfirmationWorkflowName})
	env.RegisterActivityWithOptions(acts.ConfirmPayment, activity.RegisterOptions{Name: orderactivities.ConfirmPaymentActivityName})
	env.RegisterActivityWithOptions(acts.LoadOrder, activity.RegisterOptions{Name: orderactivities.LoadOrderActivityName})
	return env
}

func TestPaymentConfirmationWorkflowMarksOrderPaid(t *testing.T) {
	svc := &fakeOrders{order: domain.Order{Number: "ORD-1", Status: domain.StatusPending, Total: decimal.NewFromInt(45000)}}
	env := newWorkflowEnv(t, svc)

	env.ExecuteWorkflow(PaymentConfirmationWorkflow, PaymentConfirmationWorkflowInput{
		Command: types.ConfirmPaymentInput{OrderID: 12, Method: "WAVE", GatewayReference: "gw-1"},
		TraceID: "trace-1",
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var order domain.Order
	require.NoError(t, env.GetWorkflowResult(&order))
	assert.Equal(t, int64(12), order.ID)
	assert.Equal(t, domain.StatusPaid, order.Status)
	require.NotNil(t, order.Payment)
	assert.Equal(t, "gw-1", order.Payment.GatewayReference)
	assert.True(t, decimal.NewFromInt(45000).Equal(order.Payment.Amount))
}

func TestPaymentConfirmationWorkflowDoesNotRetryBusinessRejections(t *testing.T) {
	svc := &fakeOrders{confirmErr: fmt.Errorf("%w: order is cancelled", application.ErrInvalidState)}
	env := newWorkflowEnv(t, svc)

	env.ExecuteWorkflow(PaymentConfirmationWorkflow, PaymentConfirmationWorkflowInput{
		Command: types.ConfirmPaymentInput{OrderID: 3, Method: "CASH", GatewayReference: "gw-2"},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, orderactivities.ErrorTypeInvalidState, appErr.Type())
	assert.True(t, appErr.NonRetryable())
	assert.Equal(t, int32(1), svc.confirmCalls.Load())
	assert.ErrorIs(t, orderactivities.RestoreError(err), application.ErrInvalidState)
}

func TestPaymentConfirmationWorkflowRetriesInfrastructureErrors(t *testing.T) {
	svc := &fakeOrders{confirmErr: errors.New("connection reset")}
	env := newWorkflowEnv(t, svc)

	env.ExecuteWorkflow(PaymentConfirmationWorkflow, PaymentConfirmationWorkflowInput{
		Command: types.ConfirmPaymentInput{OrderID: 3, Method: "CASH", GatewayReference: "gw-3"},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, int32(5), svc.confirmCalls.Load())
}

func TestConfirmPaymentActivityRejectsUninitializedBundle(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	var acts *orderactivities.Activities
	env.RegisterActivityWithOptions(acts.ConfirmPayment, activity.RegisterOptions{Name: orderactivities.ConfirmPaymentActivityName})

	_, err := env.ExecuteActivity(orderactivities.ConfirmPaymentActivityName, types.ConfirmPaymentInput{OrderID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}
