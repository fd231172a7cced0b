package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	customermemory "github.com/Apurer/go-gin-orders-api/internal/domains/customers/adapters/memory"
	customerapp "github.com/Apurer/go-gin-orders-api/internal/domains/customers/application"
	customerdomain "github.com/Apurer/go-gin-orders-api/internal/domains/customers/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

func TestDirectory_GetCustomer(t *testing.T) {
	svc := customerapp.NewService(customermemory.NewRepository())
	customer, err := customerdomain.NewCustomer(0, "Fatou@Example.com", "Fatou", "Ndiaye", "+221770000001")
	require.NoError(t, err)
	saved, err := svc.RegisterCustomer(context.Background(), customer)
	require.NoError(t, err)

	directory := NewDirectory(svc)
	found, err := directory.GetCustomer(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, "fatou@example.com", found.Email)
	require.Equal(t, "Fatou Ndiaye", found.FullName)

	_, err = directory.GetCustomer(context.Background(), saved.ID+100)
	require.ErrorIs(t, err, ports.ErrCustomerNotFound)
}
