package discount

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Kind tags the Discount variant.
type Kind string

const (
	// KindFixed subtracts an absolute amount, capped at the current total.
	KindFixed Kind = "fixed"
	// KindPercentage subtracts a share of the current total.
	KindPercentage Kind = "percentage"
)

var hundred = decimal.NewFromInt(100)

// Discount is a single reduction request applied against a sale total.
type Discount struct {
	Kind  Kind
	Value decimal.Decimal
}

// Fixed builds a fixed-amount discount.
func Fixed(amount decimal.Decimal) Discount {
	return Discount{Kind: KindFixed, Value: amount}
}

// Percentage builds a percentage discount.
func Percentage(percent decimal.Decimal) Discount {
	return Discount{Kind: KindPercentage, Value: percent}
}

// Amount returns how much the discount takes off total, unrounded and never
// more than total. Rounding happens once, on the sale total.
func (d Discount) Amount(total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() || !d.Value.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Kind {
	case KindFixed:
		amount = d.Value
	case KindPercentage:
		percent := decimal.Min(d.Value, hundred)
		amount = pricing.Percent(total, percent)
	default:
		return decimal.Zero
	}
	return decimal.Min(amount, total)
}
