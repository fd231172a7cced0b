package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrInvalidTransition signals the lifecycle table forbids the requested status change.
	ErrInvalidTransition = errors.New("invalid order transition")
	// ErrInvalidState signals the operation is not permitted at the order's current status.
	ErrInvalidState = errors.New("invalid order state")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidState):
		return err
	case errors.Is(err, domain.ErrNoLines),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidProduct),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrIncompleteAddress),
		errors.Is(err, domain.ErrInvalidDeliveryMode),
		errors.Is(err, domain.ErrBuyerRequired),
		errors.Is(err, domain.ErrGuestEmailRequired),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyReason),
		errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrEmptyPaymentRef),
		errors.Is(err, domain.ErrEmptyOrderNumber),
		errors.Is(err, domain.ErrNegativeFee):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrInvalidTransition):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, ports.ErrConflict):
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	return err
}
