package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Address is the HTTP representation of a delivery address.
type Address struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
	Phone      string `json:"phone"`
}

// GuestContact identifies a buyer without an account.
type GuestContact struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type LineRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CreateOrder is the inbound payload of POST /orders.
type CreateOrder struct {
	Guest        *GuestContact `json:"guest,omitempty"`
	DeliveryMode string        `json:"deliveryMode"`
	Address      Address       `json:"address"`
	Comment      string        `json:"comment,omitempty"`
	Lines        []LineRequest `json:"lines"`
}

type StatusUpdate struct {
	Status string `json:"status"`
}

type Cancellation struct {
	Reason string `json:"reason"`
}

// PaymentConfirmation is the gateway callback payload.
type PaymentConfirmation struct {
	Method           string `json:"method"`
	GatewayReference string `json:"gatewayReference"`
	Details          string `json:"details,omitempty"`
}

type LineItem struct {
	ID               int64           `json:"id"`
	ProductID        int64           `json:"productId"`
	ProductReference string          `json:"productReference"`
	ProductName      string          `json:"productName"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Subtotal         decimal.Decimal `json:"subtotal"`
}

type Payment struct {
	Reference        string          `json:"reference"`
	GatewayReference string          `json:"gatewayReference,omitempty"`
	Method           string          `json:"method"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Details          string          `json:"details,omitempty"`
	PaidAt           time.Time       `json:"paidAt"`
}

// Order is the HTTP representation of an order. Money is rendered as decimal strings.
type Order struct {
	ID                 int64           `json:"id"`
	Number             string          `json:"number"`
	CustomerID         *int64          `json:"customerId,omitempty"`
	Guest              *GuestContact   `json:"guest,omitempty"`
	Status             string          `json:"status"`
	DeliveryMode       string          `json:"deliveryMode"`
	Address            Address         `json:"address"`
	Comment            string          `json:"comment,omitempty"`
	Lines              []LineItem      `json:"lines"`
	ShippingFee        decimal.Decimal `json:"shippingFee"`
	Total              decimal.Decimal `json:"total"`
	TrackingNumber     string          `json:"trackingNumber,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	Payment            *Payment        `json:"payment,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

type OrderPage struct {
	Items      []Order `json:"items"`
	Page       int     `json:"page"`
	Size       int     `json:"size"`
	TotalItems int64   `json:"totalItems"`
	TotalPages int     `json:"totalPages"`
}

// ToCreateOrderInput maps the payload plus the authenticated customer, if any, into a command.
func ToCreateOrderInput(payload CreateOrder, customerID *int64, idempotencyKey string) types.CreateOrderInput {
	input := types.CreateOrderInput{
		IdempotencyKey: idempotencyKey,
		CustomerID:     customerID,
		DeliveryMode:   payload.DeliveryMode,
		Address: domain.Address{
			FirstName:  payload.Address.FirstName,
			LastName:   payload.Address.LastName,
			Line1:      payload.Address.Line1,
			Line2:      payload.Address.Line2,
			City:       payload.Address.City,
			PostalCode: payload.Address.PostalCode,
			Phone:      payload.Address.Phone,
		},
		Comment: payload.Comment,
		Lines:   make([]types.LineInput, 0, len(payload.Lines)),
	}
	if payload.Guest != nil {
		input.Guest = &domain.GuestContact{
			FirstName: payload.Guest.FirstName,
			LastName:  payload.Guest.LastName,
			Email:     payload.Guest.Email,
			Phone:     payload.Guest.Phone,
		}
	}
	for _, line := range payload.Lines {
		input.Lines = append(input.Lines, types.LineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return input
}

// FromOrder maps the aggregate into its transport shape.
func FromOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:           order.ID,
		Number:       order.Number,
		CustomerID:   order.CustomerID,
		Status:       string(order.Status),
		DeliveryMode: string(order.DeliveryMode),
		Address: Address{
			FirstName:  order.Address.FirstName,
			LastName:   order.Address.LastName,
			Line1:      order.Address.Line1,
			Line2:      order.Address.Line2,
			City:       order.Address.City,
			PostalCode: order.Address.PostalCode,
			Phone:      order.Address.Phone,
		},
		Comment:            order.Comment,
		Lines:              make([]LineItem, 0, len(order.Lines)),
		ShippingFee:        order.ShippingFee,
		Total:              order.Total,
		TrackingNumber:     order.TrackingNumber,
		CancellationReason: order.CancellationReason,
		CreatedAt:          order.CreatedAt.UTC(),
		UpdatedAt:          order.UpdatedAt.UTC(),
	}
	if order.Guest != nil {
		out.Guest = &GuestContact{
			FirstName: order.Guest.FirstName,
			LastName:  order.Guest.LastName,
			Email:     order.Guest.Email,
			Phone:     order.Guest.Phone,
		}
	}
	for _, line := range order.Lines {
		out.Lines = append(out.Lines, LineItem{
			ID:               line.ID,
			ProductID:        line.ProductID,
			ProductReference: line.ProductReference,
			ProductName:      line.ProductName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			Subtotal:         line.Subtotal,
		})
	}
	if p := order.Payment; p != nil {
		out.Payment = &Payment{
			Reference:        p.Reference,
			GatewayReference: p.GatewayReference,
			Method:           string(p.Method),
			Status:           string(p.Status),
			Amount:           p.Amount,
			Details:          p.Details,
			PaidAt:           p.PaidAt.UTC(),
		}
	}
	return out
}

func FromOrderPage(page *types.OrderPage) OrderPage {
	if page == nil {
		return OrderPage{Items: []Order{}}
	}
	out := OrderPage{
		Items:      make([]Order, 0, len(page.Items)),
		Page:       page.Page,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
	for _, order := range page.Items {
		out.Items = append(out.Items, FromOrder(order))
	}
	return out
}
