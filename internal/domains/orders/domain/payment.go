package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates accepted means of payment.
type PaymentMethod string

const (
	PaymentWave         PaymentMethod = "WAVE"
	PaymentOrangeMoney  PaymentMethod = "ORANGE_MONEY"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
)

// PaymentStatus tracks a payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// ParsePaymentMethod accepts a case-insensitive method name.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	switch method {
	case PaymentWave, PaymentOrangeMoney, PaymentBankTransfer, PaymentCash, PaymentCard:
		return method, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, raw)
	}
}

// Payment records the settlement of an order. It is never mutated once confirmed.
type Payment struct {
	ID               int64
	Reference        string
	GatewayReference string
	Method           PaymentMethod
	Status           PaymentStatus
	Amount           decimal.Decimal
	Details          string
	PaidAt           time.Time
}

// NewConfirmedPayment builds the payment attached by the payment recorder.
func NewConfirmedPayment(reference string, method PaymentMethod, amount decimal.Decimal, gatewayRef, details string, at time.Time) (*Payment, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, ErrEmptyPaymentRef
	}
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	return &Payment{
		Reference:        reference,
		GatewayReference: strings.TrimSpace(gatewayRef),
		Method:           method,
		Status:           PaymentStatusConfirmed,
		Amount:           amount.Round(2),
		Details:          strings.TrimSpace(details),
		PaidAt:           at,
	}, nil
}
