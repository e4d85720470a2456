package response

// StockWarning mirrors the wire shape consumed by the storefront UI. Status
// is an open string taxonomy: new values may appear without breaking clients.
type StockWarning struct {
	Status    string `json:"status"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
	Message   string `json:"message"`
}

type StockHint struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type StockRow struct {
	ProductVariantID *int   `json:"product_variant_id"`
	Requested        int    `json:"requested"`
	Available        int    `json:"available"`
	IsActive         bool   `json:"is_active"`
	OK               bool   `json:"ok"`
	Reason           string `json:"reason,omitempty"`
}

// StockValidate is the top-level stock-validate response body. JSON keys of
// the maps are variant ids rendered as strings.
type StockValidate struct {
	OK                  bool                    `json:"ok"`
	WarningsByVariantID map[string]StockWarning `json:"warningsByVariantId"`
	HintsByVariantID    map[string]StockHint    `json:"hintsByVariantId"`
	Items               []StockRow              `json:"items,omitempty"`
	Error               string                  `json:"error,omitempty"`
}
