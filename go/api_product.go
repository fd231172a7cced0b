package ordersserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	producthttpmapper "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-orders-api/internal/domains/catalog/ports"
	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// ProductAPI exposes the stock ledger administration endpoints.
type ProductAPI struct {
	service catalogports.Service
}

func NewProductAPI(service catalogports.Service) ProductAPI {
	return ProductAPI{service: service}
}

// Get /v1/products/:productId
func (api *ProductAPI) GetProductById(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromProduct(product))
}

// Put /v1/products/:productId/stock
// Overwrites the stock level of a product
func (api *ProductAPI) AdjustProductStock(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload producthttpmapper.StockAdjustment
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	if payload.Quantity == nil {
		respondProblem(c, apierrors.NewValidationProblem(map[string]string{"quantity": "is required"}))
		return
	}
	product, err := api.service.AdjustStock(c.Request.Context(), id, *payload.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, producthttpmapper.FromProduct(product))
}
