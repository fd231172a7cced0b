package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the catalog, customers and orders contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&customerRecord{},
		&orderRecord{},
		&orderLineRecord{},
		&paymentRecord{},
		&restorationRecord{},
		&idempotencyRecord{},
	)
}

// Product schema mirrors the catalog Postgres adapter.
type productRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	Reference string          `gorm:"column:reference;size:64;uniqueIndex"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Stock     int             `gorm:"column:stock;check:chk_products_stock,stock >= 0"`
	Available bool            `gorm:"column:available"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Customer schema mirrors the customers Postgres adapter.
type customerRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Email     string    `gorm:"column:email;uniqueIndex"`
	FirstName string    `gorm:"column:first_name"`
	LastName  string    `gorm:"column:last_name"`
	Phone     string    `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID                 int64             `gorm:"primaryKey;column:id"`
	Number             string            `gorm:"column:number;size:64;uniqueIndex"`
	CustomerID         *int64            `gorm:"column:customer_id;index"`
	GuestFirstName     string            `gorm:"column:guest_first_name"`
	GuestLastName      string            `gorm:"column:guest_last_name"`
	GuestEmail         string            `gorm:"column:guest_email"`
	GuestPhone         string            `gorm:"column:guest_phone"`
	Status             string            `gorm:"column:status;type:varchar(32);index"`
	DeliveryMode       string            `gorm:"column:delivery_mode;type:varchar(32)"`
	ShipFirstName      string            `gorm:"column:ship_first_name"`
	ShipLastName       string            `gorm:"column:ship_last_name"`
	ShipLine1          string            `gorm:"column:ship_line1"`
	ShipLine2          string            `gorm:"column:ship_line2"`
	ShipCity           string            `gorm:"column:ship_city"`
	ShipPostalCode     string            `gorm:"column:ship_postal_code"`
	ShipPhone          string            `gorm:"column:ship_phone"`
	Comment            string            `gorm:"column:comment"`
	ShippingFee        decimal.Decimal   `gorm:"column:shipping_fee;type:numeric(12,2)"`
	Total              decimal.Decimal   `gorm:"column:total;type:numeric(12,2)"`
	TrackingNumber     string            `gorm:"column:tracking_number;size:64;uniqueIndex:idx_orders_tracking_number,where:tracking_number <> ''"`
	CancellationReason string            `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time         `gorm:"column:created_at;index"`
	UpdatedAt          time.Time         `gorm:"column:updated_at"`
	Lines              []orderLineRecord `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment            *paymentRecord    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRecord) TableName() string { return "orders" }

type orderLineRecord struct {
	ID               int64           `gorm:"primaryKey;column:id"`
	OrderID          int64           `gorm:"column:order_id;index"`
	ProductID        int64           `gorm:"column:product_id;index"`
	ProductReference string          `gorm:"column:product_reference"`
	ProductName      string          `gorm:"column:product_name"`
	Quantity         int             `gorm:"column:quantity"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Subtotal         decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2)"`
}

func (orderLineRecord) TableName() string { return "order_lines" }

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

// Restoration schema mirrors the orders restoration log.
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
