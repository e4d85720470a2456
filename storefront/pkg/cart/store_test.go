package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAddItemMergesByVariant(t *testing.T) {
	c := context.Background()
	store := NewStore(nil)

	store.AddItem(c, Item{VariantID: 101, ProductName: "Camiseta", Price: "50000"}, 1)
	store.AddItem(c, Item{VariantID: 101, ProductName: "Camiseta", Price: "50000"}, 2)
	store.AddItem(c, Item{VariantID: 202, ProductName: "Gorra", Price: "30000"}, 1)

	items := store.Items()
	assert.Len(t, items, 2)
	assert.EqualValues(t, 3, items[0].Quantity)
	assert.EqualValues(t, 4, store.TotalItems())
	assert.True(t, store.TotalAmount().Equal(decimal.NewFromInt(180000)))
}

func TestAddItemClampsQuantityToOne(t *testing.T) {
	c := context.Background()
	store := NewStore(nil)

	store.AddItem(c, Item{VariantID: 101, Price: "50000"}, 0)
	store.AddItem(c, Item{VariantID: 202, Price: "30000"}, -5)

	assert.EqualValues(t, 2, store.TotalItems())
}

func TestUpdateQuantity(t *testing.T) {
	tests := []struct {
		name          string
		quantity      int
		expectedItems int
		expectedTotal int
	}{
		{
			name:          "given positive quantity should set it exactly",
			quantity:      5,
			expectedItems: 1,
			expectedTotal: 5,
		},
		{
			name:          "given zero quantity should remove the line",
			quantity:      0,
			expectedItems: 0,
			expectedTotal: 0,
		},
		{
			name:          "given negative quantity should remove the line",
			quantity:      -1,
			expectedItems: 0,
			expectedTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := context.Background()
			store := NewStore(nil)
			store.AddItem(c, Item{VariantID: 101, Price: "50000"}, 2)

			store.UpdateQuantity(c, 101, tt.quantity)

			assert.Len(t, store.Items(), tt.expectedItems)
			assert.EqualValues(t, tt.expectedTotal, store.TotalItems())
		})
	}
}

func TestTotalAmountSkipsUnparseablePrices(t *testing.T) {
	c := context.Background()
	store := NewStore(nil)

	store.AddItem(c, Item{VariantID: 101, Price: "50000"}, 1)
	store.AddItem(c, Item{VariantID: 202, Price: "not-a-number"}, 3)

	assert.True(t, store.TotalAmount().Equal(decimal.NewFromInt(50000)))
}

func TestPersistenceRoundTrip(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()

	store := NewStore(storage)
	store.AddItem(c, Item{VariantID: 101, ProductName: "Camiseta", Price: "50000"}, 1)
	store.AddItem(c, Item{VariantID: 101, ProductName: "Camiseta", Price: "50000"}, 2)
	store.SetStockWarnings(map[string]StockWarning{
		"101": {Status: StatusExceedsStock, Available: 2, Requested: 3},
	})

	rehydrated := NewStore(storage)
	err := rehydrated.Rehydrate(c)

	assert.NoError(t, err)
	assert.EqualValues(t, store.Items(), rehydrated.Items())
	assert.True(t, rehydrated.TotalAmount().Equal(decimal.NewFromInt(150000)))
	assert.Empty(t, rehydrated.StockWarnings(), "warnings are never persisted")
	assert.Empty(t, rehydrated.StockHints(), "hints are never persisted")
}

func TestSetStockWarningsTimestampsEntries(t *testing.T) {
	store := NewStore(nil)

	store.SetStockWarnings(map[string]StockWarning{
		"101": {Status: StatusInsufficient, Available: 1, Requested: 2},
	})

	warning, ok := store.StockWarning(101)
	assert.True(t, ok)
	assert.False(t, warning.CheckedAt.IsZero())
	assert.True(t, store.HasStockWarnings())
}

func TestUpsertStockWarningMergesPatch(t *testing.T) {
	store := NewStore(nil)
	store.SetStockWarnings(map[string]StockWarning{
		"101": {
			Status:    StatusInsufficient,
			Available: 2,
			Requested: 5,
			Message:   "Stock insuficiente. Disponible: 2",
		},
	})

	status := StatusExceedsStock
	requested := 3
	store.UpsertStockWarning(101, WarningPatch{Status: &status, Requested: &requested})

	warning, ok := store.StockWarning(101)
	assert.True(t, ok)
	assert.EqualValues(t, StatusExceedsStock, warning.Status)
	assert.EqualValues(t, 2, warning.Available, "untouched fields survive the patch")
	assert.EqualValues(t, 3, warning.Requested)
	assert.EqualValues(t, "Stock insuficiente. Disponible: 2", warning.Message)
}

func TestApplyOptimisticStockCheck(t *testing.T) {
	tests := []struct {
		name           string
		nextQty        int
		expectedStatus Status
	}{
		{
			name:           "given quantity above available should mark exceeds_stock",
			nextQty:        3,
			expectedStatus: StatusExceedsStock,
		},
		{
			name:           "given quantity within available should mark ok",
			nextQty:        2,
			expectedStatus: StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(nil)
			store.SetStockWarnings(map[string]StockWarning{
				"101": {Status: StatusInsufficient, Available: 2, Requested: 5},
			})

			store.ApplyOptimisticStockCheck(101, tt.nextQty)

			warning, ok := store.StockWarning(101)
			assert.True(t, ok)
			assert.EqualValues(t, tt.expectedStatus, warning.Status)
			assert.EqualValues(t, tt.nextQty, warning.Requested)
		})
	}
}

func TestApplyOptimisticStockCheckIsNoOpWithoutPriorWarning(t *testing.T) {
	store := NewStore(nil)

	store.ApplyOptimisticStockCheck(101, 99)

	_, ok := store.StockWarning(101)
	assert.False(t, ok)
	assert.False(t, store.HasStockWarnings())
}

func TestHasStockWarningsIgnoresOkEntries(t *testing.T) {
	store := NewStore(nil)
	store.SetStockWarnings(map[string]StockWarning{
		"101": {Status: StatusOK, Available: 10, Requested: 1},
	})

	assert.False(t, store.HasStockWarnings())
}

func TestCartVisibilityFlags(t *testing.T) {
	store := NewStore(nil)

	assert.False(t, store.IsOpen())
	store.OpenCart()
	assert.True(t, store.IsOpen())
	store.ToggleCart()
	assert.False(t, store.IsOpen())
	store.CloseCart()
	assert.False(t, store.IsOpen())
}

func TestClearCart(t *testing.T) {
	c := context.Background()
	storage := NewMemoryStorage()
	store := NewStore(storage)
	store.AddItem(c, Item{VariantID: 101, Price: "50000"}, 2)

	store.ClearCart(c)

	assert.Empty(t, store.Items())

	rehydrated := NewStore(storage)
	assert.NoError(t, rehydrated.Rehydrate(c))
	assert.Empty(t, rehydrated.Items())
}
