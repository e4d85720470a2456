package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID          uuid.UUID       `json:"order_id"`
	PaymentReference string          `json:"payment_reference"`
	Status           string          `json:"status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	Total            decimal.Decimal `json:"total"`
}

type ShippingQuote struct {
	CityCode     string          `json:"city_code"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	FreeShipping bool            `json:"free_shipping"`
}

type City struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type Variant struct {
	ID          int             `json:"id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Label       string          `json:"label"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
}
