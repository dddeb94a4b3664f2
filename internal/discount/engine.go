package discount

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

// ErrInvalidRule is returned when a rule violates the catalog constraints.
var ErrInvalidRule = errors.New("invalid discount rule")

// Rule captures one entry of the discount catalog. Exactly one of ItemID,
// CustomerID or TotalThreshold selects the axis the rule belongs to.
type Rule struct {
	ID             int              `json:"id"`
	ItemID         *int             `json:"itemId,omitempty"`
	CustomerID     *int             `json:"customerId,omitempty"`
	TotalThreshold *decimal.Decimal `json:"totalThreshold,omitempty"`
	Percent        int              `json:"percent"`
	Active         bool             `json:"active"`
}

// Item represents a sale line eligible for item discounts.
type Item struct {
	ItemID int
	Gross  decimal.Decimal
}

// Validate ensures the rule is well formed.
func (r Rule) Validate() error {
	if r.ID < 0 {
		return fmt.Errorf("rule id must not be negative: %w", ErrInvalidRule)
	}
	if r.Percent < 0 || r.Percent > 100 {
		return fmt.Errorf("rule %d: percent must be between 0 and 100: %w", r.ID, ErrInvalidRule)
	}
	if r.TotalThreshold != nil && r.TotalThreshold.IsNegative() {
		return fmt.Errorf("rule %d: threshold must not be negative: %w", r.ID, ErrInvalidRule)
	}
	return nil
}

func (r Rule) matchesItem(id int) bool {
	return r.Active && r.ItemID != nil && *r.ItemID == id
}

func (r Rule) matchesCustomer(id int) bool {
	return r.Active && r.CustomerID != nil && *r.CustomerID == id
}

func (r Rule) matchesTotal(total decimal.Decimal) bool {
	if !r.Active || r.TotalThreshold == nil || !r.TotalThreshold.IsPositive() {
		return false
	}
	return total.GreaterThanOrEqual(*r.TotalThreshold)
}

// Catalog is a fixed set of rules loaded once and read concurrently.
type Catalog struct {
	rules []Rule
}

// NewCatalog validates rules and builds an immutable catalog.
func NewCatalog(rules []Rule) (*Catalog, error) {
	seen := make(map[int]struct{}, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %d: %w", r.ID, ErrInvalidRule)
		}
		seen[r.ID] = struct{}{}
	}
	return &Catalog{rules: append([]Rule(nil), rules...)}, nil
}

// Rules returns a copy of the catalog entries.
func (c *Catalog) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// ForItems returns the amount item rules take off the provided lines: for each
// line, the percent of every matching rule applied to the line's VAT-inclusive
// total. The sum is rounded to two decimals and applied as a fixed discount.
func (c *Catalog) ForItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if !it.Gross.IsPositive() {
			continue
		}
		for _, r := range c.rules {
			if r.matchesItem(it.ItemID) {
				total = total.Add(pricing.Percent(it.Gross, decimal.NewFromInt(int64(r.Percent))))
			}
		}
	}
	return pricing.Round2(total)
}

// ForCustomer compounds every rule matching customerID into one whole percent.
func (c *Catalog) ForCustomer(customerID int) int {
	var percents []int
	for _, r := range c.rules {
		if r.matchesCustomer(customerID) {
			percents = append(percents, r.Percent)
		}
	}
	return Compound(percents)
}

// ForTotal compounds every rule whose threshold is reached by total into one
// whole percent.
func (c *Catalog) ForTotal(total decimal.Decimal) int {
	var percents []int
	for _, r := range c.rules {
		if r.matchesTotal(total) {
			percents = append(percents, r.Percent)
		}
	}
	return Compound(percents)
}

// Compound stacks percentages multiplicatively, 1 - Π(1 - p/100), and returns
// the equivalent single percentage rounded to a whole number.
func Compound(percents []int) int {
	remaining := decimal.NewFromInt(1)
	for _, p := range percents {
		share := decimal.NewFromInt(int64(p)).Div(hundred)
		remaining = remaining.Mul(decimal.NewFromInt(1).Sub(share))
	}
	return int(decimal.NewFromInt(1).Sub(remaining).Mul(hundred).Round(0).IntPart())
}

// DefaultRules returns the reference rule set: 10% on items 1-4, 10% for
// customers 1 and 2, and 10% each for totals of at least 100 and 50.
func DefaultRules() []Rule {
	ptr := func(v int) *int { return &v }
	threshold := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return []Rule{
		{ID: 1, ItemID: ptr(1), Percent: 10, Active: true},
		{ID: 2, ItemID: ptr(2), Percent: 10, Active: true},
		{ID: 3, ItemID: ptr(3), Percent: 10, Active: true},
		{ID: 4, ItemID: ptr(4), Percent: 10, Active: true},
		{ID: 5, CustomerID: ptr(1), Percent: 10, Active: true},
		{ID: 6, CustomerID: ptr(2), Percent: 10, Active: true},
		{ID: 7, TotalThreshold: threshold(100), Percent: 10, Active: true},
		{ID: 8, TotalThreshold: threshold(50), Percent: 10, Active: true},
	}
}
