package cart

import (
	"time"
)

// Item is one line in the cart. Price travels as a decimal string to avoid
// floating-point currency drift; use shopspring/decimal for arithmetic.
type Item struct {
	VariantID    int    `json:"variantId"`
	ProductID    int    `json:"productId"`
	ProductName  string `json:"productName"`
	ProductSlug  string `json:"productSlug"`
	VariantLabel string `json:"variantLabel"`
	Price        string `json:"price"`
	Quantity     int    `json:"quantity"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// Status is an open set: the backend may emit values the client does not
// recognize yet, and those must be tolerated rather than rejected.
type Status string

const (
	StatusOK           Status = "ok"
	StatusExceedsStock Status = "exceeds_stock"
	StatusInsufficient Status = "insufficient"
	StatusMissing      Status = "missing"
	StatusInactive     Status = "inactive"
	StatusError        Status = "error"
)

// Known reports whether the status is one the UI has dedicated rendering for.
// Unknown statuses fall back to a passthrough rendering of Message.
func (s Status) Known() bool {
	switch s {
	case StatusOK, StatusExceedsStock, StatusInsufficient, StatusMissing,
		StatusInactive, StatusError:
		return true
	}
	return false
}

// StockWarning is an ephemeral annotation keyed by variant id. It is owned by
// the validation subsystem, overwritten wholesale on every successful
// validation call, and never persisted.
type StockWarning struct {
	Status    Status    `json:"status"`
	Available int       `json:"available"`
	Requested int       `json:"requested"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checkedAt"`
}

// StockHint is a non-blocking informational annotation ("last unit
// available"). Hints are structurally separate from warnings so the UI never
// treats a hint as an error condition.
type StockHint struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// WarningPatch is a partial update for UpsertStockWarning; nil fields leave
// the previously known value untouched.
type WarningPatch struct {
	Status    *Status
	Available *int
	Requested *int
	Message   *string
}
