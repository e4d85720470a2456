package cart

import (
	"context"
	"sync"
)

// Storage persists cart lines between sessions. Implementations store items
// only; warnings and hints are transient by contract.
type Storage interface {
	Save(c context.Context, items []Item) error
	Load(c context.Context) ([]Item, error)
}

// MemoryStorage is an in-process Storage, used in tests and for ephemeral
// guest carts.
type MemoryStorage struct {
	mu    sync.Mutex
	items []Item
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Save(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]Item, len(items))
	copy(m.items, items)
	return nil
}

func (m *MemoryStorage) Load(_ context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]Item, len(m.items))
	copy(items, m.items)
	return items, nil
}
