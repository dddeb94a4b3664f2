package sale

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Payment records how a sale was settled.
type Payment struct {
	TotalPrice decimal.Decimal `json:"totalPrice"`
	AmountPaid decimal.Decimal `json:"amountPaid"`
	Change     decimal.Decimal `json:"change"`
}

// NewPayment settles totalPrice with amountPaid and derives the change.
func NewPayment(totalPrice, amountPaid decimal.Decimal) (Payment, error) {
	p := Payment{
		TotalPrice: totalPrice,
		AmountPaid: amountPaid,
		Change:     amountPaid.Sub(totalPrice),
	}
	if err := p.Validate(); err != nil {
		return Payment{}, err
	}
	return p, nil
}

// Validate enforces the settlement invariants.
func (p Payment) Validate() error {
	if p.AmountPaid.IsNegative() {
		return ErrNegativeAmount
	}
	if p.TotalPrice.IsNegative() || p.Change.IsNegative() {
		return fmt.Errorf("amounts must not be negative: %w", ErrInvalidPayment)
	}
	if p.AmountPaid.LessThan(p.TotalPrice) {
		return fmt.Errorf("paid %s is less than total %s: %w", p.AmountPaid.StringFixed(2), p.TotalPrice.StringFixed(2), ErrInvalidPayment)
	}
	if !p.Change.Equal(p.AmountPaid.Sub(p.TotalPrice)) {
		return fmt.Errorf("change does not match paid minus total: %w", ErrInvalidPayment)
	}
	return nil
}
