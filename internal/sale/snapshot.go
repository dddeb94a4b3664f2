package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotLine is a read-only sale line with its VAT-inclusive total.
type SnapshotLine struct {
	ItemID      int             `json:"itemId"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	VATPercent  int             `json:"vatPercent"`
	Gross       decimal.Decimal `json:"gross"`
}

// Snapshot is an immutable copy of a sale handed to receipt, accounting and
// inventory collaborators.
type Snapshot struct {
	ID          uuid.UUID       `json:"id"`
	Lines       []SnapshotLine  `json:"lines"`
	Discount    decimal.Decimal `json:"discount"`
	TotalVAT    decimal.Decimal `json:"totalVat"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	Payment     *Payment        `json:"payment,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Snapshot captures the current state of the sale.
func (s *Sale) Snapshot() Snapshot {
	lines := make([]SnapshotLine, 0, len(s.lines))
	for _, l := range s.lines {
		lines = append(lines, SnapshotLine{
			ItemID:      l.Item.ID,
			Description: l.Item.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.Item.UnitPrice,
			VATPercent:  l.Item.VATPercent,
			Gross:       l.Gross(),
		})
	}
	snap := Snapshot{
		ID:         s.id,
		Lines:      lines,
		Discount:   s.discount,
		TotalVAT:   s.totalVAT,
		TotalPrice: s.TotalPrice(),
	}
	if s.payment != nil {
		p := *s.payment
		at := s.completedAt
		snap.Payment = &p
		snap.CompletedAt = &at
	}
	return snap
}
