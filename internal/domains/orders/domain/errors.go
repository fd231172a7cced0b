package domain

import "errors"

var (
	ErrNoLines              = errors.New("order must contain at least one line")
	ErrInvalidQuantity      = errors.New("quantity must be at least one")
	ErrInvalidProduct       = errors.New("product id must be greater than zero")
	ErrNegativePrice        = errors.New("unit price must not be negative")
	ErrIncompleteAddress    = errors.New("delivery address is incomplete")
	ErrInvalidDeliveryMode  = errors.New("delivery mode is invalid")
	ErrBuyerRequired        = errors.New("exactly one of customer or guest contact is required")
	ErrGuestEmailRequired   = errors.New("guest email is required")
	ErrEmptyOrderNumber     = errors.New("order number is required")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrEmptyReason          = errors.New("cancellation reason is required")
	ErrInvalidPaymentMethod = errors.New("payment method is invalid")
	ErrEmptyPaymentRef      = errors.New("payment reference is required")
	ErrNegativeAmount       = errors.New("payment amount must not be negative")
	ErrNegativeFee          = errors.New("shipping fee must not be negative")

	// ErrInvalidTransition is returned when the transition table forbids a move.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrInvalidState is returned when an operation is not permitted at the current status.
	ErrInvalidState = errors.New("operation not permitted in current order status")
)
