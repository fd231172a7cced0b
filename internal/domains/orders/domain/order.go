package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Address is the delivery address snapshot copied onto the order at creation.
type Address struct {
	FirstName  string
	LastName   string
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Phone      string
}

// Normalize trims every field.
func (a Address) Normalize() Address {
	return Address{
		FirstName:  strings.TrimSpace(a.FirstName),
		LastName:   strings.TrimSpace(a.LastName),
		Line1:      strings.TrimSpace(a.Line1),
		Line2:      strings.TrimSpace(a.Line2),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// Validate requires names, first line, city and phone.
func (a Address) Validate() error {
	var missing []string
	if a.FirstName == "" {
		missing = append(missing, "firstName")
	}
	if a.LastName == "" {
		missing = append(missing, "lastName")
	}
	if a.Line1 == "" {
		missing = append(missing, "line1")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteAddress, strings.Join(missing, ", "))
	}
	return nil
}

// GuestContact identifies the buyer of an order placed without an account.
type GuestContact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (g GuestContact) Normalize() GuestContact {
	return GuestContact{
		FirstName: strings.TrimSpace(g.FirstName),
		LastName:  strings.TrimSpace(g.LastName),
		Email:     strings.ToLower(strings.TrimSpace(g.Email)),
		Phone:     strings.TrimSpace(g.Phone),
	}
}

func (g GuestContact) Validate() error {
	if g.Email == "" {
		return ErrGuestEmailRequired
	}
	return nil
}

// ValidateBuyer enforces that exactly one of customer and guest is present.
func ValidateBuyer(customerID *int64, guest *GuestContact) error {
	if (customerID == nil) == (guest == nil) {
		return ErrBuyerRequired
	}
	if guest != nil {
		return guest.Validate()
	}
	return nil
}

// LineItem is a purchased product with price and display data frozen at order time.
type LineItem struct {
	ID               int64
	ProductID        int64
	ProductReference string
	ProductName      string
	Quantity         int
	UnitPrice        decimal.Decimal
	Subtotal         decimal.Decimal
}

// NewLineItem freezes the product's current price and computes the subtotal.
func NewLineItem(productID int64, reference, name string, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	if productID <= 0 {
		return LineItem{}, ErrInvalidProduct
	}
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return LineItem{}, ErrNegativePrice
	}
	price := unitPrice.Round(2)
	return LineItem{
		ProductID:        productID,
		ProductReference: reference,
		ProductName:      name,
		Quantity:         quantity,
		UnitPrice:        price,
		Subtotal:         price.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Draft carries everything needed to assemble a new order.
type Draft struct {
	Number       string
	CustomerID   *int64
	Guest        *GuestContact
	DeliveryMode DeliveryMode
	Address      Address
	Comment      string
	Lines        []LineItem
	ShippingFee  decimal.Decimal
	CreatedAt    time.Time
}

// Order is the purchase aggregate. It owns its line items and payment.
type Order struct {
	ID                 int64
	Number             string
	CustomerID         *int64
	Guest              *GuestContact
	Status             Status
	DeliveryMode       DeliveryMode
	Address            Address
	Comment            string
	Lines              []LineItem
	ShippingFee        decimal.Decimal
	Total              decimal.Decimal
	TrackingNumber     string
	CancellationReason string
	Payment            *Payment
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder validates a draft and returns a PENDING order with its total computed.
func NewOrder(d Draft) (*Order, error) {
	if strings.TrimSpace(d.Number) == "" {
		return nil, ErrEmptyOrderNumber
	}
	if len(d.Lines) == 0 {
		return nil, ErrNoLines
	}
	var guest *GuestContact
	if d.Guest != nil {
		g := d.Guest.Normalize()
		guest = &g
	}
	if err := ValidateBuyer(d.CustomerID, guest); err != nil {
		return nil, err
	}
	if _, err := ParseDeliveryMode(string(d.DeliveryMode)); err != nil {
		return nil, err
	}
	address := d.Address.Normalize()
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if d.ShippingFee.IsNegative() {
		return nil, ErrNegativeFee
	}
	lines := make([]LineItem, len(d.Lines))
	copy(lines, d.Lines)
	order := &Order{
		Number:       d.Number,
		CustomerID:   d.CustomerID,
		Guest:        guest,
		Status:       StatusPending,
		DeliveryMode: d.DeliveryMode,
		Address:      address,
		Comment:      strings.TrimSpace(d.Comment),
		Lines:        lines,
		ShippingFee:  d.ShippingFee.Round(2),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.CreatedAt,
	}
	order.Total = order.LinesTotal().Add(order.ShippingFee)
	return order, nil
}

// LinesTotal sums the frozen line subtotals.
func (o *Order) LinesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, line := range o.Lines {
		sum = sum.Add(line.Subtotal)
	}
	return sum
}

// IsGuest reports whether the order has no customer account attached.
func (o *Order) IsGuest() bool {
	return o.CustomerID == nil
}

// TransitionTo moves the order to next when the transition table allows it.
func (o *Order) TransitionTo(next Status, at time.Time) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}

// AssignTrackingNumber sets the tracking number unless one already exists.
func (o *Order) AssignTrackingNumber(number string) bool {
	if o.TrackingNumber != "" || strings.TrimSpace(number) == "" {
		return false
	}
	o.TrackingNumber = number
	return true
}

// Cancel moves the order to CANCELLED and records the reason.
func (o *Order) Cancel(reason string, at time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrEmptyReason
	}
	if o.Status == StatusDelivered || o.Status == StatusCancelled {
		return fmt.Errorf("%w: cannot cancel a %s order", ErrInvalidState, o.Status)
	}
	if err := o.TransitionTo(StatusCancelled, at); err != nil {
		return err
	}
	o.CancellationReason = reason
	return nil
}

// EnsureDeletable allows hard deletion only for cancelled orders.
func (o *Order) EnsureDeletable() error {
	if o.Status != StatusCancelled {
		return fmt.Errorf("%w: only cancelled orders can be deleted, order is %s", ErrInvalidState, o.Status)
	}
	return nil
}

// IsPaymentReplay reports whether a confirmation with gatewayRef was already recorded.
func (o *Order) IsPaymentReplay(gatewayRef string) bool {
	gatewayRef = strings.TrimSpace(gatewayRef)
	return o.Status == StatusPaid &&
		o.Payment != nil &&
		gatewayRef != "" &&
		o.Payment.GatewayReference == gatewayRef
}

// ConfirmPayment attaches a payment and marks the order PAID. Payment is accepted
// from PENDING or CONFIRMED only.
func (o *Order) ConfirmPayment(payment *Payment, at time.Time) error {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return fmt.Errorf("%w: cannot record payment on a %s order", ErrInvalidState, o.Status)
	}
	if o.Payment != nil {
		return fmt.Errorf("%w: order already has a payment", ErrInvalidState)
	}
	o.Payment = payment
	o.Status = StatusPaid
	o.UpdatedAt = at
	return nil
}

// Clone returns a deep copy safe to hand across adapter boundaries.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.CustomerID != nil {
		id := *o.CustomerID
		clone.CustomerID = &id
	}
	if o.Guest != nil {
		guest := *o.Guest
		clone.Guest = &guest
	}
	if o.Payment != nil {
		payment := *o.Payment
		clone.Payment = &payment
	}
	clone.Lines = make([]LineItem, len(o.Lines))
	copy(clone.Lines, o.Lines)
	return &clone
}
