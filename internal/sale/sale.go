package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/discount"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

var (
	// ErrInvalidQuantity is returned when a scanned quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrNegativeAmount is returned when the paid amount is negative.
	ErrNegativeAmount = errors.New("amount paid must not be negative")
	// ErrInvalidPayment is returned when a payment violates its invariants.
	ErrInvalidPayment = errors.New("invalid payment")
	// ErrSaleCompleted is returned when mutating a sale that has been paid.
	ErrSaleCompleted = errors.New("sale already completed")
)

// Line is one catalog item plus its accumulated quantity within a sale.
type Line struct {
	Item     catalog.Item `json:"item"`
	Quantity int          `json:"quantity"`
}

func (l Line) pricingItem() pricing.Item {
	return pricing.Item{Qty: l.Quantity, UnitPrice: l.Item.UnitPrice, VATPercent: l.Item.VATPercent}
}

// Gross returns the VAT-inclusive line total.
func (l Line) Gross() decimal.Decimal {
	return pricing.LineGross(l.pricingItem())
}

// Sale aggregates scanned lines, accumulated discount and, once settled, the payment.
// A Sale is not safe for concurrent use; its owner serializes access.
type Sale struct {
	id          uuid.UUID
	lines       []Line
	discount    decimal.Decimal
	totalVAT    decimal.Decimal
	payment     *Payment
	completedAt time.Time
}

// New starts an empty sale.
func New() *Sale {
	return &Sale{id: uuid.New(), discount: decimal.Zero, totalVAT: decimal.Zero}
}

// ID identifies the sale.
func (s *Sale) ID() uuid.UUID { return s.id }

// Completed reports whether a payment has been recorded.
func (s *Sale) Completed() bool { return s.payment != nil }

// AddItem adds quantity units of item, merging with an existing line for the same item id.
func (s *Sale) AddItem(item catalog.Item, quantity int) error {
	if s.Completed() {
		return ErrSaleCompleted
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	merged := false
	for i := range s.lines {
		if s.lines[i].Item.ID == item.ID {
			s.lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, Line{Item: item, Quantity: quantity})
	}
	s.updateTotalVAT()
	return nil
}

// ApplyDiscount adds the amount d takes off the current total to the accumulated
// discount and returns that amount. Percentages apply to the already discounted total.
func (s *Sale) ApplyDiscount(d discount.Discount) (decimal.Decimal, error) {
	if s.Completed() {
		return decimal.Zero, ErrSaleCompleted
	}
	amount := d.Amount(s.TotalPrice())
	s.discount = s.discount.Add(amount)
	return amount, nil
}

// TotalPrice returns the VAT-inclusive total after discounts, rounded half-up to
// two decimals and never negative.
func (s *Sale) TotalPrice() decimal.Decimal {
	return pricing.Compute(s.pricingItems(), s.discount).Total
}

// TotalVAT returns the VAT contained in the undiscounted line totals.
func (s *Sale) TotalVAT() decimal.Decimal { return s.totalVAT }

// Discount returns the accumulated discount.
func (s *Sale) Discount() decimal.Decimal { return s.discount }

// Lines returns a copy of the sale lines in scan order.
func (s *Sale) Lines() []Line {
	return append([]Line(nil), s.lines...)
}

// Payment returns the recorded payment, if any.
func (s *Sale) Payment() (Payment, bool) {
	if s.payment == nil {
		return Payment{}, false
	}
	return *s.payment, true
}

// CompletedAt returns the time the payment was recorded, zero while open.
func (s *Sale) CompletedAt() time.Time { return s.completedAt }

// RecordPayment settles the sale and returns the change. Once a payment exists
// later calls leave it untouched and return the recorded change.
func (s *Sale) RecordPayment(amountPaid decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if amountPaid.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	if s.payment != nil {
		return s.payment.Change, nil
	}
	p, err := NewPayment(s.TotalPrice(), amountPaid)
	if err != nil {
		return decimal.Zero, fmt.Errorf("record payment: %w", err)
	}
	s.payment = &p
	s.completedAt = now
	return p.Change, nil
}

// DiscountItems converts the lines into discount lookup input.
func (s *Sale) DiscountItems() []discount.Item {
	items := make([]discount.Item, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, discount.Item{ItemID: l.Item.ID, Gross: l.Gross()})
	}
	return items
}

func (s *Sale) pricingItems() []pricing.Item {
	items := make([]pricing.Item, 0, len(s.lines))
	for _, l := range s.lines {
		items = append(items, l.pricingItem())
	}
	return items
}

func (s *Sale) updateTotalVAT() {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(pricing.LineVAT(l.pricingItem()))
	}
	s.totalVAT = total
}
