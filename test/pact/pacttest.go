//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "storefront"

	StateCatalogBaseline = "product 1 in stock and customer 1 registered"
	StateOrderExists     = "pending order with id 1 exists"
	StateOrderMissing    = "no order with id 999"
	StateLowStock        = "product 1 has a single unit in stock"
)

const (
	CustomerID       int64 = 1
	ProductID        int64 = 1
	ProductReference       = "BOU-01"
	ProductName            = "Boubou brode"
	ProductPrice           = "20000"
	ProductStock           = 10

	ExistingOrderID int64 = 1
	MissingOrderID  int64 = 999

	GatewayReference = "wave-tx-1001"
)

// OrderNumberPattern matches numbers issued by the order assembler.
const OrderNumberPattern = `^CMD-[0-9A-HJKMNP-TV-Z]{26}$`

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleAddress is the delivery address used by every order interaction.
func ExampleAddress() map[string]any {
	return map[string]any{
		"firstName": "Awa",
		"lastName":  "Diop",
		"line1":     "12 Rue Carnot",
		"city":      "Dakar",
		"phone":     "770000000",
	}
}

// ExampleOrderRequest builds a home delivery order for quantity units of the seeded product.
func ExampleOrderRequest(quantity int) map[string]any {
	return map[string]any{
		"deliveryMode": "HOME_DELIVERY",
		"address":      ExampleAddress(),
		"lines": []map[string]any{
			{"productId": ProductID, "quantity": quantity},
		},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
