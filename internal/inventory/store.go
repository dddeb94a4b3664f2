package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/noah-isme/backend-pos/internal/sale"
)

// ErrUnknownItem is returned when stock is requested for an untracked item.
var ErrUnknownItem = errors.New("item not tracked by inventory")

// Store tracks stock levels and applies completed sales to them.
type Store interface {
	Stock(ctx context.Context, itemID int) (int, error)
	Deduct(ctx context.Context, snap sale.Snapshot) error
	Levels(ctx context.Context) ([]Level, error)
}

// DefaultStock returns the reference opening stock per item id.
func DefaultStock() map[int]int {
	return map[int]int{1: 34, 2: 57, 3: 21, 4: 88, 5: 49}
}

// MemoryStore keeps stock levels in process.
type MemoryStore struct {
	mu    sync.Mutex
	stock map[int]int
}

// NewMemoryStore seeds a store with the provided opening stock.
func NewMemoryStore(opening map[int]int) *MemoryStore {
	stock := make(map[int]int, len(opening))
	for id, qty := range opening {
		stock[id] = qty
	}
	return &MemoryStore{stock: stock}
}

// Stock implements Store.
func (m *MemoryStore) Stock(_ context.Context, itemID int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qty, ok := m.stock[itemID]
	if !ok {
		return 0, ErrUnknownItem
	}
	return qty, nil
}

// Deduct implements Store. Lines for untracked items are skipped.
func (m *MemoryStore) Deduct(_ context.Context, snap sale.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, line := range snap.Lines {
		if _, ok := m.stock[line.ItemID]; !ok {
			continue
		}
		m.stock[line.ItemID] -= line.Quantity
	}
	return nil
}

// Levels implements Store.
func (m *MemoryStore) Levels(_ context.Context) ([]Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Level, 0, len(m.stock))
	for id, qty := range m.stock {
		out = append(out, Level{ItemID: id, Quantity: qty})
	}
	sortLevels(out)
	return out, nil
}

func sortLevels(levels []Level) {
	sort.Slice(levels, func(i, j int) bool { return levels[i].ItemID < levels[j].ItemID })
}

// Level is the stock of one item.
type Level struct {
	ItemID   int `json:"itemId"`
	Quantity int `json:"quantity"`
}
