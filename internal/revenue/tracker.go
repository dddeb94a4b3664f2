package revenue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/events"
)

// Tracker accumulates revenue from completed sales. It is registered as an
// events.Notifier on the checkout bus.
type Tracker struct {
	Logger zerolog.Logger
	Gauge  prometheus.Gauge

	mu    sync.Mutex
	total decimal.Decimal
	sales int
}

// Notify implements events.Notifier. Events other than sale.completed are ignored.
func (t *Tracker) Notify(_ context.Context, event events.Event) error {
	if event.Topic != events.TopicSaleCompleted {
		return nil
	}
	var payload events.SaleCompleted
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("revenue: decode payload: %w", err)
	}
	amount, err := decimal.NewFromString(payload.Total)
	if err != nil {
		return fmt.Errorf("revenue: parse total %q: %w", payload.Total, err)
	}

	t.mu.Lock()
	t.total = t.total.Add(amount)
	t.sales++
	total := t.total
	t.mu.Unlock()

	if t.Gauge != nil {
		t.Gauge.Set(total.InexactFloat64())
	}
	t.Logger.Info().
		Str("sale_id", payload.SaleID).
		Str("register_id", payload.RegisterID).
		Str("sale_total", amount.StringFixed(2)).
		Str("revenue_total", total.StringFixed(2)).
		Msg("revenue updated")
	return nil
}

// Total returns the revenue accumulated so far.
func (t *Tracker) Total() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// Sales returns the number of completed sales seen.
func (t *Tracker) Sales() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sales
}
