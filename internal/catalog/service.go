package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Source resolves catalog entries from the backing store.
type Source interface {
	Find(ctx context.Context, id int) (Item, error)
}

// MemorySource is a fixed, read-only set of entries loaded once at startup.
type MemorySource struct {
	mu    sync.RWMutex
	items map[int]Item
}

// NewMemorySource validates the provided entries and indexes them by id.
func NewMemorySource(items []Item) (*MemorySource, error) {
	idx := make(map[int]Item, len(items))
	for _, it := range items {
		valid, err := NewItem(it.ID, it.Description, it.UnitPrice, it.VATPercent)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", it.ID, err)
		}
		if _, dup := idx[it.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %d: %w", it.ID, ErrInvalidItem)
		}
		idx[it.ID] = valid
	}
	return &MemorySource{items: idx}, nil
}

// Find implements Source.
func (m *MemorySource) Find(_ context.Context, id int) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return it, nil
}

// Items lists every entry ordered by id.
func (m *MemorySource) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Service answers item lookups, consulting the cache first when one is configured.
type Service struct {
	source Source
	cache  *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Source Source
	Cache  *Cache
}

// NewService constructs a catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("catalog: source is required")
	}
	return &Service{source: cfg.Source, cache: cfg.Cache}, nil
}

// Lookup returns the entry for id, ErrItemNotFound when it does not exist, or an
// error wrapping ErrUnavailable when the source fails.
func (s *Service) Lookup(ctx context.Context, id int) (Item, error) {
	if cached, ok, err := s.cache.Get(ctx, id); err == nil && ok {
		return cached, nil
	}
	it, err := s.source.Find(ctx, id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return Item{}, fmt.Errorf("item %d: %w", id, ErrItemNotFound)
		}
		if errors.Is(err, ErrUnavailable) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	_ = s.cache.Put(ctx, it)
	return it, nil
}
