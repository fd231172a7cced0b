package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

func TestToCreateOrderInputCarriesBuyerAndLines(t *testing.T) {
	customerID := int64(7)
	payload := CreateOrder{
		DeliveryMode: "express",
		Address:      Address{FirstName: "Awa", LastName: "Diop", Line1: "12 Rue", City: "Dakar", Phone: "770000000"},
		Lines:        []LineRequest{{ProductID: 1, Quantity: 2}, {ProductID: 3, Quantity: 1}},
	}

	input := ToCreateOrderInput(payload, &customerID, "key-1")

	assert.Equal(t, "key-1", input.IdempotencyKey)
	require.NotNil(t, input.CustomerID)
	assert.Equal(t, int64(7), *input.CustomerID)
	assert.Nil(t, input.Guest)
	assert.Equal(t, "Dakar", input.Address.City)
	require.Len(t, input.Lines, 2)
	assert.Equal(t, 2, input.Lines[0].Quantity)
}

func TestFromOrderRendersMoneyAsStrings(t *testing.T) {
	paidAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := &domain.Order{
		ID:           4,
		Number:       "CMD-01",
		Guest:        &domain.GuestContact{Email: "guest@example.com"},
		Status:       domain.StatusPaid,
		DeliveryMode: domain.DeliveryExpress,
		Lines: []domain.LineItem{{
			ID: 1, ProductID: 2, ProductReference: "REF-2", ProductName: "Boubou",
			Quantity: 2, UnitPrice: decimal.NewFromInt(20000), Subtotal: decimal.NewFromInt(40000),
		}},
		ShippingFee: decimal.NewFromInt(5000),
		Total:       decimal.NewFromInt(45000),
		Payment: &domain.Payment{
			Reference: "PAY-1", Method: domain.PaymentWave, Status: domain.PaymentStatusConfirmed,
			Amount: decimal.NewFromInt(45000), PaidAt: paidAt,
		},
	}

	raw, err := json.Marshal(FromOrder(order))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "45000", body["total"])
	assert.Equal(t, "5000", body["shippingFee"])
	assert.Equal(t, "guest@example.com", body["guest"].(map[string]any)["email"])
	payment := body["payment"].(map[string]any)
	assert.Equal(t, "2026-03-01T10:00:00Z", payment["paidAt"])
	assert.NotContains(t, body, "customerId")
}

func TestFromOrderPageNeverReturnsNullItems(t *testing.T) {
	raw, err := json.Marshal(FromOrderPage(nil))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"items":[]`)
}
