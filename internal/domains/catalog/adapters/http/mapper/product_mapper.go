package mapper

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/catalog/domain"
)

// Product is the HTTP representation of a catalog entry and its stock.
type Product struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// StockAdjustment is the payload of PUT /products/:productId/stock.
type StockAdjustment struct {
	Quantity *int `json:"quantity"`
}

func FromProduct(p *domain.Product) Product {
	if p == nil {
		return Product{}
	}
	return Product{
		ID:        p.ID,
		Reference: p.Reference,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		Available: p.Available,
	}
}
