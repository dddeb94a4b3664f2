package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/backend-pos/internal/resilience"
)

// GuardedSource fails fast with ErrUnavailable while the breaker around Source is open.
type GuardedSource struct {
	Source  Source
	Breaker *resilience.Breaker
}

// Find implements Source.
func (g GuardedSource) Find(ctx context.Context, id int) (Item, error) {
	if g.Breaker == nil {
		return g.Source.Find(ctx, id)
	}
	var item Item
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		item, err = g.Source.Find(ctx, id)
		return err
	}, func(err error) bool { return !errors.Is(err, ErrItemNotFound) })
	if errors.Is(err, resilience.ErrOpenCircuit) {
		return Item{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return item, err
}
