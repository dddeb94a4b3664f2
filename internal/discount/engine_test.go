package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func defaultCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(DefaultRules())
	require.NoError(t, err)
	return c
}

func TestFixedAmountCapsAtTotal(t *testing.T) {
	require.Equal(t, "43.6", Fixed(dec("50")).Amount(dec("43.60")).String())
	require.Equal(t, "5", Fixed(dec("5")).Amount(dec("43.60")).String())
	require.True(t, Fixed(dec("5")).Amount(decimal.Zero).IsZero())
	require.True(t, Fixed(dec("-5")).Amount(dec("10")).IsZero())
}

func TestPercentageAmount(t *testing.T) {
	require.Equal(t, "10", Percentage(dec("10")).Amount(dec("100")).String())
	require.Equal(t, "26.9325", Percentage(dec("19")).Amount(dec("141.75")).String())
	require.Equal(t, "100", Percentage(dec("150")).Amount(dec("100")).String())
}

func TestForItems(t *testing.T) {
	c := defaultCatalog(t)
	items := []Item{
		{ItemID: 1, Gross: dec("50")},
		{ItemID: 2, Gross: dec("125")},
		{ItemID: 5, Gross: dec("16.80")},
	}
	require.Equal(t, "17.5", c.ForItems(items).String())
}

func TestForItemsSkipsInactiveRules(t *testing.T) {
	id := 7
	c, err := NewCatalog([]Rule{{ID: 1, ItemID: &id, Percent: 50, Active: false}})
	require.NoError(t, err)
	require.True(t, c.ForItems([]Item{{ItemID: 7, Gross: dec("10")}}).IsZero())
}

func TestForItemsSumsMatchingRules(t *testing.T) {
	id := 3
	c, err := NewCatalog([]Rule{
		{ID: 1, ItemID: &id, Percent: 10, Active: true},
		{ID: 2, ItemID: &id, Percent: 20, Active: true},
	})
	require.NoError(t, err)
	require.Equal(t, "3", c.ForItems([]Item{{ItemID: 3, Gross: dec("10")}, {ItemID: 4, Gross: dec("10")}}).String())
}

func TestForCustomerCompounds(t *testing.T) {
	c := defaultCatalog(t)
	require.Equal(t, 10, c.ForCustomer(1))
	require.Equal(t, 0, c.ForCustomer(3))

	id := 9
	stacked, err := NewCatalog([]Rule{
		{ID: 1, CustomerID: &id, Percent: 50, Active: true},
		{ID: 2, CustomerID: &id, Percent: 50, Active: true},
		{ID: 3, CustomerID: &id, Percent: 50, Active: true},
	})
	require.NoError(t, err)
	// 1 - 0.5^3 = 0.875
	require.Equal(t, 88, stacked.ForCustomer(9))
}

func TestForTotalThresholds(t *testing.T) {
	c := defaultCatalog(t)
	require.Equal(t, 19, c.ForTotal(dec("175")))
	require.Equal(t, 10, c.ForTotal(dec("75")))
	require.Equal(t, 0, c.ForTotal(dec("49.99")))
}

func TestNewCatalogValidates(t *testing.T) {
	_, err := NewCatalog([]Rule{{ID: 1, Percent: 101}})
	require.ErrorIs(t, err, ErrInvalidRule)
	_, err = NewCatalog([]Rule{{ID: 1, Percent: -1}})
	require.ErrorIs(t, err, ErrInvalidRule)
	_, err = NewCatalog([]Rule{{ID: 1}, {ID: 1}})
	require.ErrorIs(t, err, ErrInvalidRule)
}

func TestCompoundEmpty(t *testing.T) {
	require.Equal(t, 0, Compound(nil))
}
