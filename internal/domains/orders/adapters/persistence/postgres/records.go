package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

type orderRecord struct {
	ID                 int64            `gorm:"primaryKey;column:id"`
	Number             string           `gorm:"column:number;size:64;uniqueIndex"`
	CustomerID         *int64           `gorm:"column:customer_id;index"`
	GuestFirstName     string           `gorm:"column:guest_first_name"`
	GuestLastName      string           `gorm:"column:guest_last_name"`
	GuestEmail         string           `gorm:"column:guest_email"`
	GuestPhone         string           `gorm:"column:guest_phone"`
	Status             string           `gorm:"column:status;type:varchar(32);index"`
	DeliveryMode       string           `gorm:"column:delivery_mode;type:varchar(32)"`
	ShipFirstName      string           `gorm:"column:ship_first_name"`
	ShipLastName       string           `gorm:"column:ship_last_name"`
	ShipLine1          string           `gorm:"column:ship_line1"`
	ShipLine2          string           `gorm:"column:ship_line2"`
	ShipCity           string           `gorm:"column:ship_city"`
	ShipPostalCode     string           `gorm:"column:ship_postal_code"`
	ShipPhone          string           `gorm:"column:ship_phone"`
	Comment            string           `gorm:"column:comment"`
	ShippingFee        decimal.Decimal  `gorm:"column:shipping_fee;type:numeric(12,2)"`
	Total              decimal.Decimal  `gorm:"column:total;type:numeric(12,2)"`
	TrackingNumber     string           `gorm:"column:tracking_number;size:64;uniqueIndex:idx_orders_tracking_number,where:tracking_number <> ''"`
	CancellationReason string           `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time        `gorm:"column:created_at;index"`
	UpdatedAt          time.Time        `gorm:"column:updated_at"`
	Lines              []lineItemRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment            *paymentRecord   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type lineItemRecord struct {
	ID               int64           `gorm:"primaryKey;column:id"`
	OrderID          int64           `gorm:"column:order_id;index"`
	ProductID        int64           `gorm:"column:product_id;index"`
	ProductReference string          `gorm:"column:product_reference"`
	ProductName      string          `gorm:"column:product_name"`
	Quantity         int             `gorm:"column:quantity"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Subtotal         decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
}

func (lineItemRecord) TableName() string { return "order_lines" }

type paymentRecord struct {
	ID               int64           `gorm:"primaryKey;column:id"`
	OrderID          int64           `gorm:"column:order_id;uniqueIndex"`
	Reference        string          `gorm:"column:reference;size:64;uniqueIndex"`
	GatewayReference string          `gorm:"column:gateway_reference;index"`
	Method           string          `gorm:"column:method;type:varchar(32)"`
	Status           string          `gorm:"column:status;type:varchar(32)"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	Details          string          `gorm:"column:details"`
	PaidAt           time.Time       `gorm:"column:paid_at"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
}

func (paymentRecord) TableName() string { return "payments" }

type restorationRecord struct {
	ID          int64      `gorm:"primaryKey;column:id"`
	OrderID     int64      `gorm:"column:order_id;index"`
	OrderNumber string     `gorm:"column:order_number"`
	ProductID   int64      `gorm:"column:product_id"`
	Quantity    int        `gorm:"column:quantity"`
	Reason      string     `gorm:"column:reason"`
	Attempts    int        `gorm:"column:attempts"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at;index"`
}

func (restorationRecord) TableName() string { return "stock_restoration_failures" }

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     int64     `gorm:"column:order_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func toOrderRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		ID:                 order.ID,
		Number:             order.Number,
		CustomerID:         order.CustomerID,
		Status:             string(order.Status),
		DeliveryMode:       string(order.DeliveryMode),
		ShipFirstName:      order.Address.FirstName,
		ShipLastName:       order.Address.LastName,
		ShipLine1:          order.Address.Line1,
		ShipLine2:          order.Address.Line2,
		ShipCity:           order.Address.City,
		ShipPostalCode:     order.Address.PostalCode,
		ShipPhone:          order.Address.Phone,
		Comment:            order.Comment,
		ShippingFee:        order.ShippingFee,
		Total:              order.Total,
		TrackingNumber:     order.TrackingNumber,
		CancellationReason: order.CancellationReason,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
	if order.Guest != nil {
		record.GuestFirstName = order.Guest.FirstName
		record.GuestLastName = order.Guest.LastName
		record.GuestEmail = order.Guest.Email
		record.GuestPhone = order.Guest.Phone
	}
	record.Lines = make([]lineItemRecord, 0, len(order.Lines))
	for _, line := range order.Lines {
		record.Lines = append(record.Lines, lineItemRecord{
			ID:               line.ID,
			OrderID:          order.ID,
			ProductID:        line.ProductID,
			ProductReference: line.ProductReference,
			ProductName:      line.ProductName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			Subtotal:         line.Subtotal,
		})
	}
	if order.Payment != nil {
		payment := toPaymentRecord(order.ID, order.Payment)
		record.Payment = &payment
	}
	return record
}

func toPaymentRecord(orderID int64, payment *domain.Payment) paymentRecord {
	return paymentRecord{
		ID:               payment.ID,
		OrderID:          orderID,
		Reference:        payment.Reference,
		GatewayReference: payment.GatewayReference,
		Method:           string(payment.Method),
		Status:           string(payment.Status),
		Amount:           payment.Amount,
		Details:          payment.Details,
		PaidAt:           payment.PaidAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:           r.ID,
		Number:       r.Number,
		CustomerID:   r.CustomerID,
		Status:       domain.Status(r.Status),
		DeliveryMode: domain.DeliveryMode(r.DeliveryMode),
		Address: domain.Address{
			FirstName:  r.ShipFirstName,
			LastName:   r.ShipLastName,
			Line1:      r.ShipLine1,
			Line2:      r.ShipLine2,
			City:       r.ShipCity,
			PostalCode: r.ShipPostalCode,
			Phone:      r.ShipPhone,
		},
		Comment:            r.Comment,
		ShippingFee:        r.ShippingFee,
		Total:              r.Total,
		TrackingNumber:     r.TrackingNumber,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
	if r.CustomerID == nil {
		order.Guest = &domain.GuestContact{
			FirstName: r.GuestFirstName,
			LastName:  r.GuestLastName,
			Email:     r.GuestEmail,
			Phone:     r.GuestPhone,
		}
	}
	order.Lines = make([]domain.LineItem, 0, len(r.Lines))
	for _, line := range r.Lines {
		order.Lines = append(order.Lines, domain.LineItem{
			ID:               line.ID,
			ProductID:        line.ProductID,
			ProductReference: line.ProductReference,
			ProductName:      line.ProductName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			Subtotal:         line.Subtotal,
		})
	}
	if r.Payment != nil {
		order.Payment = &domain.Payment{
			ID:               r.Payment.ID,
			Reference:        r.Payment.Reference,
			GatewayReference: r.Payment.GatewayReference,
			Method:           domain.PaymentMethod(r.Payment.Method),
			Status:           domain.PaymentStatus(r.Payment.Status),
			Amount:           r.Payment.Amount,
			Details:          r.Payment.Details,
			PaidAt:           r.Payment.PaidAt.UTC(),
		}
	}
	return order
}

func (r restorationRecord) toDomain() domain.RestorationFailure {
	return domain.RestorationFailure{
		ID:          r.ID,
		OrderID:     r.OrderID,
		OrderNumber: r.OrderNumber,
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Reason:      r.Reason,
		Attempts:    r.Attempts,
		CreatedAt:   r.CreatedAt.UTC(),
		ResolvedAt:  r.ResolvedAt,
	}
}
