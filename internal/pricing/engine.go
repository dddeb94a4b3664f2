package pricing

import "github.com/shopspring/decimal"

// Money represents a monetary value in major units (e.g. SEK).
type Money = decimal.Decimal

var hundred = decimal.NewFromInt(100)

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty        int
	UnitPrice  Money
	VATPercent int
}

// Summary aggregates computed pricing components.
type Summary struct {
	Gross    Money
	VAT      Money
	Discount Money
	Total    Money
}

// Round2 rounds half-up to two decimals. Values handled here are never negative.
func Round2(v Money) Money {
	return v.Round(2)
}

// Percent returns v * percent / 100 without rounding.
func Percent(v Money, percent decimal.Decimal) Money {
	return v.Mul(percent).Div(hundred)
}

// UnitGross returns the VAT-inclusive unit price.
func UnitGross(it Item) Money {
	return it.UnitPrice.Add(Percent(it.UnitPrice, decimal.NewFromInt(int64(it.VATPercent))))
}

// LineGross returns unitPrice * qty * (1 + vat/100).
func LineGross(it Item) Money {
	if it.Qty <= 0 {
		return decimal.Zero
	}
	return UnitGross(it).Mul(decimal.NewFromInt(int64(it.Qty)))
}

// LineVAT returns unitPrice * vat/100 * qty.
func LineVAT(it Item) Money {
	if it.Qty <= 0 {
		return decimal.Zero
	}
	return Percent(it.UnitPrice, decimal.NewFromInt(int64(it.VATPercent))).Mul(decimal.NewFromInt(int64(it.Qty)))
}

// Compute calculates sale totals given the line items and the accumulated discount.
func Compute(items []Item, discount Money) Summary {
	gross := decimal.Zero
	vat := decimal.Zero
	for _, it := range items {
		gross = gross.Add(LineGross(it))
		vat = vat.Add(LineVAT(it))
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(gross) {
		discount = gross
	}
	total := Round2(gross.Sub(discount))
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Summary{
		Gross:    gross,
		VAT:      vat,
		Discount: discount,
		Total:    total,
	}
}
