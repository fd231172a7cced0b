// Package customers resolves order purchasers through the customers bounded context.
package customers

import (
	"context"
	"errors"
	"fmt"

	customerports "github.com/Apurer/go-gin-orders-api/internal/domains/customers/ports"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.CustomerDirectory = (*Directory)(nil)

type Directory struct {
	customers customerports.Service
}

func NewDirectory(customers customerports.Service) *Directory {
	return &Directory{customers: customers}
}

func (d *Directory) GetCustomer(ctx context.Context, id int64) (*ports.Customer, error) {
	customer, err := d.customers.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, customerports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ports.ErrCustomerNotFound, id)
		}
		return nil, err
	}
	return &ports.Customer{
		ID:       customer.ID,
		Email:    customer.Email,
		FullName: customer.FullName(),
	}, nil
}
