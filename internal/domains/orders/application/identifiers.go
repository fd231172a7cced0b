package application

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const (
	orderNumberPrefix = "CMD-"
	paymentRefPrefix  = "PAY-"
	trackingPrefix    = "TRK-"
)

// identifiers issues ULID-based order numbers and payment references, which are
// monotonic within a millisecond. Tracking numbers carry all 128 bits of a
// random UUID.
type identifiers struct{}

// NewIdentifiers returns the default identifier generator.
func NewIdentifiers() ports.IdentifierGenerator {
	return identifiers{}
}

func (identifiers) OrderNumber() string {
	return orderNumberPrefix + ulid.Make().String()
}

func (identifiers) PaymentReference() string {
	return paymentRefPrefix + ulid.Make().String()
}

func (identifiers) TrackingNumber() string {
	id := uuid.New()
	return trackingPrefix + strings.ToUpper(hex.EncodeToString(id[:]))
}

func (identifiers) EventID() string {
	return uuid.NewString()
}
