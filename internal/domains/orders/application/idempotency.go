package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	types "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
)

type normalizedCreateOrderInput struct {
	CustomerID   *int64             `json:"customerId"`
	Guest        *normalizedGuest   `json:"guest"`
	DeliveryMode string             `json:"deliveryMode"`
	Address      normalizedAddress  `json:"address"`
	Comment      string             `json:"comment"`
	Lines        []normalizedLineKV `json:"lines"`
}

type normalizedGuest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type normalizedAddress struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

type normalizedLineKV struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order payload (excluding the idempotency key).
func FingerprintCreateOrder(input types.CreateOrderInput) (string, error) {
	payload, err := json.Marshal(normalizeCreateOrderInput(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeCreateOrderInput(input types.CreateOrderInput) normalizedCreateOrderInput {
	address := input.Address.Normalize()
	normalized := normalizedCreateOrderInput{
		CustomerID:   input.CustomerID,
		DeliveryMode: strings.ToUpper(strings.TrimSpace(input.DeliveryMode)),
		Address: normalizedAddress{
			FirstName:  address.FirstName,
			LastName:   address.LastName,
			Line1:      address.Line1,
			Line2:      address.Line2,
			City:       address.City,
			PostalCode: address.PostalCode,
			Phone:      address.Phone,
		},
		Comment: strings.TrimSpace(input.Comment),
		Lines:   normalizeLines(input.Lines),
	}
	if input.Guest != nil {
		guest := input.Guest.Normalize()
		normalized.Guest = &normalizedGuest{
			FirstName: guest.FirstName,
			LastName:  guest.LastName,
			Email:     guest.Email,
			Phone:     guest.Phone,
		}
	}
	return normalized
}

// normalizeLines keeps request order so a replay returns lines in the order retried.
func normalizeLines(lines []types.LineInput) []normalizedLineKV {
	out := make([]normalizedLineKV, 0, len(lines))
	for _, line := range lines {
		out = append(out, normalizedLineKV{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return out
}
