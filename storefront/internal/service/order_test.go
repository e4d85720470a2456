package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	inErrors "github.com/casamora/storefront/internal/errors"
	"github.com/casamora/storefront/storefront/pkg/request"
)

func testCheckoutRequest(items ...request.CheckoutItem) request.Checkout {
	return request.Checkout{
		Customer: request.Customer{
			FullName:       "Ana Pérez",
			Email:          "ana@example.com",
			Phone:          "3001234567",
			DocumentType:   "CC",
			DocumentNumber: "1234567",
		},
		ShippingAddress: request.ShippingAddress{
			CityCode: "BOG",
			Address:  "Calle 1 # 2-3",
		},
		Items:         items,
		PaymentMethod: "transferencia",
	}
}

func TestCheckout(t *testing.T) {
	c := context.Background()
	c = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(c)
	h := setup(t, c, filepath.Join("seed", "variants.seed.sql"))
	defer h.teardown(t)

	t.Run("given available stock should create order and decrement stock", func(t *testing.T) {
		order, err := h.orderService.Checkout(c, testCheckoutRequest(
			request.CheckoutItem{ProductVariantID: 101, Quantity: 2},
		))

		assert.NoError(t, err)
		assert.Equal(t, StatusPendingPayment, order.Status)
		assert.True(t, strings.HasPrefix(order.PaymentReference, "CM-"))
		assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(100000)))
		assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(8000)), "bogota flat rate")
		assert.True(t, order.Total.Equal(decimal.NewFromInt(108000)))

		variants, err := h.variants.FindVariantsByIds(c, []int{101})
		assert.NoError(t, err)
		assert.EqualValues(t, 8, variants[101].Stock)
	})

	t.Run("given subtotal above threshold should ship free", func(t *testing.T) {
		order, err := h.orderService.Checkout(c, testCheckoutRequest(
			request.CheckoutItem{ProductVariantID: 101, Quantity: 4},
		))

		assert.NoError(t, err)
		assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(200000)))
		assert.True(t, order.ShippingCost.Equal(decimal.Zero))
		assert.True(t, order.Total.Equal(decimal.NewFromInt(200000)))
	})

	t.Run("given insufficient stock should return stock conflict", func(t *testing.T) {
		_, err := h.orderService.Checkout(c, testCheckoutRequest(
			request.CheckoutItem{ProductVariantID: 303, Quantity: 1},
		))

		conflict := &StockConflictError{}
		assert.ErrorAs(t, err, &conflict)
		assert.False(t, conflict.Result.OK)
		warning := conflict.Result.WarningsByVariantID["303"]
		assert.EqualValues(t, ReasonInsufficient, warning.Status)
	})

	t.Run("given inactive variant should return stock conflict", func(t *testing.T) {
		_, err := h.orderService.Checkout(c, testCheckoutRequest(
			request.CheckoutItem{ProductVariantID: 404, Quantity: 1},
		))

		conflict := &StockConflictError{}
		assert.ErrorAs(t, err, &conflict)
		warning := conflict.Result.WarningsByVariantID["404"]
		assert.EqualValues(t, ReasonInactive, warning.Status)
	})

	t.Run("given empty items should return empty cart error", func(t *testing.T) {
		_, err := h.orderService.Checkout(c, testCheckoutRequest())

		assert.ErrorIs(t, err, inErrors.ErrEmptyCart)
	})

	t.Run("given unknown city should return unknown city error", func(t *testing.T) {
		req := testCheckoutRequest(request.CheckoutItem{ProductVariantID: 101, Quantity: 1})
		req.ShippingAddress.CityCode = "NYC"

		_, err := h.orderService.Checkout(c, req)

		assert.ErrorIs(t, err, inErrors.ErrUnknownCity)
	})

	t.Run("given conflict no stock should have been decremented", func(t *testing.T) {
		before, err := h.variants.FindVariantsByIds(c, []int{202})
		assert.NoError(t, err)

		_, err = h.orderService.Checkout(c, testCheckoutRequest(
			request.CheckoutItem{ProductVariantID: 202, Quantity: 1},
			request.CheckoutItem{ProductVariantID: 303, Quantity: 1},
		))
		conflict := &StockConflictError{}
		assert.True(t, errors.As(err, &conflict))

		after, err := h.variants.FindVariantsByIds(c, []int{202})
		assert.NoError(t, err)
		assert.EqualValues(t, before[202].Stock, after[202].Stock)
	})
}
