package controller

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/casamora/storefront/storefront/internal/repository"
)

func TestVariantResponseMapping(t *testing.T) {
	variant := repository.Variant{
		ID:          101,
		ProductID:   7,
		ProductName: "Vela de soya",
		ProductSlug: "vela-de-soya",
		Label:       "250g",
		Price:       decimal.NewFromInt(50000),
		Stock:       10,
		IsActive:    true,
	}

	actual := variantResponse(variant)

	assert.Equal(t, variant.ID, actual.ID)
	assert.Equal(t, variant.ProductID, actual.ProductID)
	assert.Equal(t, variant.ProductName, actual.ProductName)
	assert.Equal(t, variant.ProductSlug, actual.ProductSlug)
	assert.Equal(t, variant.Label, actual.Label)
	assert.True(t, actual.Price.Equal(variant.Price))
	assert.Equal(t, variant.Stock, actual.Stock)
	assert.Equal(t, variant.IsActive, actual.IsActive)
}
