package request

import (
	"encoding/json"
	"errors"
)

var ErrItemsRequired = errors.New("items es requerido y debe ser una lista")

type StockItem struct {
	ProductVariantID int `json:"product_variant_id"`
	Quantity         int `json:"quantity"`
}

// NormalizeStockItems coerces the raw items payload of a stock-validate
// request. The contract is lenient about row shapes: rows that are not
// objects, or whose id/quantity cannot be coerced to positive integers, are
// dropped rather than rejected. Only a missing or non-list items field is a
// request-shape error.
func NormalizeStockItems(raw json.RawMessage) ([]StockItem, error) {
	if len(raw) == 0 {
		return nil, ErrItemsRequired
	}
	rows := []json.RawMessage{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, ErrItemsRequired
	}

	normalized := make([]StockItem, 0, len(rows))
	for _, row := range rows {
		fields := map[string]interface{}{}
		if err := json.Unmarshal(row, &fields); err != nil {
			continue
		}
		variantID := coerceInt(fields["product_variant_id"])
		quantity := coerceInt(fields["quantity"])
		if variantID <= 0 || quantity <= 0 {
			continue
		}
		normalized = append(normalized, StockItem{
			ProductVariantID: variantID,
			Quantity:         quantity,
		})
	}
	return normalized, nil
}

func coerceInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		parsed := 0
		if err := json.Unmarshal([]byte(n), &parsed); err != nil {
			return 0
		}
		return parsed
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(parsed)
	}
	return 0
}
