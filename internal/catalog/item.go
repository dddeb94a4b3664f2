package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound is returned when no catalog entry matches the requested id.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnavailable indicates the catalog backend could not be reached.
	ErrUnavailable = errors.New("catalog unavailable")
	// ErrInvalidItem is returned when an entry violates the catalog constraints.
	ErrInvalidItem = errors.New("invalid catalog item")
)

// Item is an immutable catalog entry.
type Item struct {
	ID          int             `json:"id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	VATPercent  int             `json:"vatPercent"`
}

// NewItem validates and builds a catalog entry.
func NewItem(id int, description string, unitPrice decimal.Decimal, vatPercent int) (Item, error) {
	if id < 0 {
		return Item{}, fmt.Errorf("id must not be negative: %w", ErrInvalidItem)
	}
	if strings.TrimSpace(description) == "" {
		return Item{}, fmt.Errorf("description is required: %w", ErrInvalidItem)
	}
	if unitPrice.IsNegative() {
		return Item{}, fmt.Errorf("unit price must not be negative: %w", ErrInvalidItem)
	}
	if vatPercent < 0 || vatPercent > 100 {
		return Item{}, fmt.Errorf("vat must be between 0 and 100: %w", ErrInvalidItem)
	}
	return Item{ID: id, Description: description, UnitPrice: unitPrice, VATPercent: vatPercent}, nil
}

// DefaultItems returns the reference store assortment.
func DefaultItems() []Item {
	return []Item{
		{ID: 1, Description: "Apple", UnitPrice: decimal.NewFromInt(10), VATPercent: 25},
		{ID: 2, Description: "Banana", UnitPrice: decimal.NewFromInt(20), VATPercent: 25},
		{ID: 3, Description: "Orange", UnitPrice: decimal.NewFromInt(8), VATPercent: 25},
		{ID: 4, Description: "Milk", UnitPrice: decimal.NewFromInt(20), VATPercent: 6},
		{ID: 5, Description: "Bread", UnitPrice: decimal.NewFromInt(15), VATPercent: 12},
	}
}
