package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DeliveryMode selects how an order reaches the buyer.
type DeliveryMode string

const (
	DeliveryHome    DeliveryMode = "HOME_DELIVERY"
	DeliveryPickup  DeliveryMode = "STORE_PICKUP"
	DeliveryExpress DeliveryMode = "EXPRESS"
)

// ParseDeliveryMode accepts a case-insensitive mode name.
func ParseDeliveryMode(raw string) (DeliveryMode, error) {
	mode := DeliveryMode(strings.ToUpper(strings.TrimSpace(raw)))
	switch mode {
	case DeliveryHome, DeliveryPickup, DeliveryExpress:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDeliveryMode, raw)
	}
}

// ShippingPolicy is the fee table applied at order creation.
type ShippingPolicy struct {
	Standard decimal.Decimal
	Express  decimal.Decimal
}

// DefaultShippingPolicy charges 2500 for standard delivery and 5000 for express.
func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		Standard: decimal.NewFromInt(2500),
		Express:  decimal.NewFromInt(5000),
	}
}

func (p ShippingPolicy) Validate() error {
	if p.Standard.IsNegative() || p.Express.IsNegative() {
		return ErrNegativeFee
	}
	return nil
}

// FeeFor returns the shipping fee for mode. Pickup is always free.
func (p ShippingPolicy) FeeFor(mode DeliveryMode) decimal.Decimal {
	switch mode {
	case DeliveryPickup:
		return decimal.Zero
	case DeliveryExpress:
		return p.Express.Round(2)
	default:
		return p.Standard.Round(2)
	}
}
