package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/casamora/storefront/storefront/pkg/request"
	"github.com/casamora/storefront/storefront/pkg/response"
)

func TestValidateStock(t *testing.T) {
	c := context.Background()
	c = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(c)
	h := setup(t, c, filepath.Join("seed", "variants.seed.sql"))
	defer h.teardown(t)

	tests := []struct {
		name     string
		items    []request.StockItem
		expected func(t *testing.T, actual response.StockValidate)
	}{
		{
			name:  "given empty items should return ok with empty maps",
			items: []request.StockItem{},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.True(t, actual.OK)
				assert.Empty(t, actual.WarningsByVariantID)
				assert.Empty(t, actual.HintsByVariantID)
				assert.Empty(t, actual.Items)
			},
		},
		{
			name: "given available stock should return ok with a diagnostic row",
			items: []request.StockItem{
				{ProductVariantID: 101, Quantity: 2},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.True(t, actual.OK)
				assert.Empty(t, actual.WarningsByVariantID)
				assert.Len(t, actual.Items, 1)
				assert.True(t, actual.Items[0].OK)
				assert.EqualValues(t, 10, actual.Items[0].Available)
			},
		},
		{
			name: "given unknown variant should warn missing",
			items: []request.StockItem{
				{ProductVariantID: 999, Quantity: 1},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.False(t, actual.OK)
				warning := actual.WarningsByVariantID["999"]
				assert.EqualValues(t, ReasonMissing, warning.Status)
				assert.EqualValues(t, "Variante no encontrada.", warning.Message)
			},
		},
		{
			name: "given inactive variant should warn inactive",
			items: []request.StockItem{
				{ProductVariantID: 404, Quantity: 1},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.False(t, actual.OK)
				warning := actual.WarningsByVariantID["404"]
				assert.EqualValues(t, ReasonInactive, warning.Status)
			},
		},
		{
			name: "given quantity above stock should warn insufficient with available count",
			items: []request.StockItem{
				{ProductVariantID: 303, Quantity: 1},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.False(t, actual.OK)
				warning := actual.WarningsByVariantID["303"]
				assert.EqualValues(t, ReasonInsufficient, warning.Status)
				assert.EqualValues(t, 0, warning.Available)
				assert.EqualValues(t, "Stock insuficiente. Disponible: 0", warning.Message)
			},
		},
		{
			name: "given last unit requested should hint last_unit",
			items: []request.StockItem{
				{ProductVariantID: 202, Quantity: 1},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.True(t, actual.OK)
				hint := actual.HintsByVariantID["202"]
				assert.EqualValues(t, HintLastUnit, hint.Kind)
				assert.EqualValues(t, "Última unidad disponible", hint.Message)
			},
		},
		{
			name: "given last unit over-requested should warn without hint",
			items: []request.StockItem{
				{ProductVariantID: 202, Quantity: 2},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.False(t, actual.OK)
				_, hasHint := actual.HintsByVariantID["202"]
				assert.False(t, hasHint, "a variant never carries both a hint and a warning")
				warning := actual.WarningsByVariantID["202"]
				assert.EqualValues(t, ReasonInsufficient, warning.Status)
			},
		},
		{
			name: "given mixed items should report each independently",
			items: []request.StockItem{
				{ProductVariantID: 101, Quantity: 2},
				{ProductVariantID: 999, Quantity: 1},
				{ProductVariantID: 303, Quantity: 3},
			},
			expected: func(t *testing.T, actual response.StockValidate) {
				assert.False(t, actual.OK)
				assert.Len(t, actual.Items, 3)
				assert.Len(t, actual.WarningsByVariantID, 2)
				_, hasOkWarning := actual.WarningsByVariantID["101"]
				assert.False(t, hasOkWarning)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := h.stock.ValidateStock(c, tt.items)
			assert.NoError(t, err)
			tt.expected(t, actual)
		})
	}
}
