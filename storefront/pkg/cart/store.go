package cart

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/casamora/storefront/internal/log"
)

// Store holds the authoritative client-side view of what the user intends to
// buy, independent of server confirmation. All operations are synchronous and
// cannot fail; persistence is a side effect that is logged when it breaks but
// never surfaces to the caller.
//
// Warning/hint maps are keyed by the variant id rendered as a string, to match
// the wire format of the stock-validate endpoint.
type Store struct {
	mu       sync.Mutex
	items    []Item
	warnings map[string]StockWarning
	hints    map[string]StockHint
	open     bool
	storage  Storage
	now      func() time.Time
}

// NewStore returns an empty store. storage may be nil for a purely ephemeral
// cart. The store does not auto-rehydrate on construction; call Rehydrate
// once at application start.
func NewStore(storage Storage) *Store {
	return &Store{
		warnings: map[string]StockWarning{},
		hints:    map[string]StockHint{},
		storage:  storage,
		now:      time.Now,
	}
}

// Rehydrate restores persisted items. Warnings and hints are never persisted,
// so they start empty regardless.
func (s *Store) Rehydrate(c context.Context) error {
	if s.storage == nil {
		return nil
	}
	items, err := s.storage.Load(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	return nil
}

// AddItem appends a new line, or increments the quantity of the existing line
// for the same variant id. quantity < 1 is treated as 1. No upper bound is
// enforced locally; the server is the source of truth for availability.
func (s *Store) AddItem(c context.Context, item Item, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].VariantID == item.VariantID {
			s.items[i].Quantity += quantity
			s.persistLocked(c)
			return
		}
	}
	item.Quantity = quantity
	s.items = append(s.items, item)
	s.persistLocked(c)
}

// RemoveItem removes the line entirely; no-op if absent.
func (s *Store) RemoveItem(c context.Context, variantID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].VariantID == variantID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.persistLocked(c)
			return
		}
	}
}

// UpdateQuantity sets the quantity exactly (not additive). quantity < 1
// removes the line.
func (s *Store) UpdateQuantity(c context.Context, variantID, quantity int) {
	if quantity < 1 {
		s.RemoveItem(c, variantID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].VariantID == variantID {
			s.items[i].Quantity = quantity
			s.persistLocked(c)
			return
		}
	}
}

// ClearCart empties all lines. Used after successful checkout.
func (s *Store) ClearCart(c context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked(c)
}

// Items returns a copy of the current lines.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

// TotalItems is the sum of quantities across all lines, recomputed on every
// call so it is always consistent with current state.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalAmount is the sum of price*quantity across all lines. Unparseable
// prices contribute zero, matching the backend's defensive decimal coercion.
func (s *Store) TotalAmount() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OpenCart, CloseCart and ToggleCart are pure UI-visibility flags with no
// side effects on cart contents.
func (s *Store) OpenCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

func (s *Store) CloseCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Store) ToggleCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// SetStockWarnings replaces the warning map wholesale, timestamping every
// entry with the call time.
func (s *Store) SetStockWarnings(warnings map[string]StockWarning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	next := make(map[string]StockWarning, len(warnings))
	for key, warning := range warnings {
		warning.CheckedAt = now
		next[key] = warning
	}
	s.warnings = next
}

// SetStockHints replaces the hint map wholesale.
func (s *Store) SetStockHints(hints map[string]StockHint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]StockHint, len(hints))
	for key, hint := range hints {
		next[key] = hint
	}
	s.hints = next
}

// UpsertStockWarning merge-updates a single entry, preserving previously
// known fields not present in the patch.
func (s *Store) UpsertStockWarning(variantID int, patch WarningPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyFor(variantID)
	warning := s.warnings[key]
	if patch.Status != nil {
		warning.Status = *patch.Status
	}
	if patch.Available != nil {
		warning.Available = *patch.Available
	}
	if patch.Requested != nil {
		warning.Requested = *patch.Requested
	}
	if patch.Message != nil {
		warning.Message = *patch.Message
	}
	warning.CheckedAt = s.now()
	s.warnings[key] = warning
}

// ApplyOptimisticStockCheck locally predicts whether a proposed quantity
// change would exceed the last known available count, without waiting for a
// server round trip. Advisory only: the next real validation response
// supersedes it. No-op when no prior warning exists for the variant.
func (s *Store) ApplyOptimisticStockCheck(variantID, nextQty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyFor(variantID)
	warning, ok := s.warnings[key]
	if !ok {
		return
	}
	warning.Requested = nextQty
	if nextQty > warning.Available {
		warning.Status = StatusExceedsStock
	} else {
		warning.Status = StatusOK
	}
	s.warnings[key] = warning
}

// HasStockWarnings reports whether any entry's status is not ok.
func (s *Store) HasStockWarnings() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, warning := range s.warnings {
		if warning.Status != StatusOK {
			return true
		}
	}
	return false
}

// StockWarning is a point lookup by variant id.
func (s *Store) StockWarning(variantID int) (StockWarning, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	warning, ok := s.warnings[keyFor(variantID)]
	return warning, ok
}

// StockWarnings returns a copy of the current warning map.
func (s *Store) StockWarnings() map[string]StockWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	warnings := make(map[string]StockWarning, len(s.warnings))
	for key, warning := range s.warnings {
		warnings[key] = warning
	}
	return warnings
}

// StockHints returns a copy of the current hint map.
func (s *Store) StockHints() map[string]StockHint {
	s.mu.Lock()
	defer s.mu.Unlock()
	hints := make(map[string]StockHint, len(s.hints))
	for key, hint := range s.hints {
		hints[key] = hint
	}
	return hints
}

// persistLocked snapshots items (never warnings or hints) into storage. The
// caller must hold s.mu.
func (s *Store) persistLocked(c context.Context) {
	if s.storage == nil {
		return
	}
	items := make([]Item, len(s.items))
	copy(items, s.items)
	if err := s.storage.Save(c, items); err != nil {
		zerolog.Ctx(c).
			Error().
			Err(err).
			Str(log.KeyTag, "cart persistLocked").
			Msgf("failed persisting cart with error=%s", err.Error())
	}
}

func keyFor(variantID int) string {
	return strconv.Itoa(variantID)
}
