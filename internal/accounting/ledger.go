package accounting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/sale"
)

// ErrNotPaid is returned when an unsettled sale is submitted.
var ErrNotPaid = errors.New("accounting: sale has no payment")

// Entry is one booked sale.
type Entry struct {
	SaleID   uuid.UUID       `json:"saleId"`
	Total    decimal.Decimal `json:"total"`
	VAT      decimal.Decimal `json:"vat"`
	Discount decimal.Decimal `json:"discount"`
	Paid     decimal.Decimal `json:"paid"`
	BookedAt time.Time       `json:"bookedAt"`
}

// Ledger books completed sales in memory.
type Ledger struct {
	Logger zerolog.Logger

	mu      sync.Mutex
	entries []Entry
}

// Record books a completed sale.
func (l *Ledger) Record(_ context.Context, snap sale.Snapshot) error {
	if snap.Payment == nil || snap.CompletedAt == nil {
		return ErrNotPaid
	}
	entry := Entry{
		SaleID:   snap.ID,
		Total:    snap.Payment.TotalPrice,
		VAT:      snap.TotalVAT,
		Discount: snap.Discount,
		Paid:     snap.Payment.AmountPaid,
		BookedAt: *snap.CompletedAt,
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	l.Logger.Info().
		Str("sale_id", snap.ID.String()).
		Str("total", entry.Total.StringFixed(2)).
		Str("vat", entry.VAT.StringFixed(2)).
		Msg("sale booked")
	return nil
}

// Entries returns a copy of the booked entries in booking order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Total sums every booked sale total.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, e := range l.entries {
		total = total.Add(e.Total)
	}
	return total
}
