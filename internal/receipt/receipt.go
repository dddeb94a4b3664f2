package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/sale"
)

// ErrNotPaid is returned when printing a sale without a payment.
var ErrNotPaid = errors.New("receipt: sale has no payment")

const (
	timeLayout = "2006-01-02 15:04:05"
	labelWidth = 26
)

// Format renders a paid sale as a fixed-width text receipt.
func Format(snap sale.Snapshot, currency string) (string, error) {
	if snap.Payment == nil || snap.CompletedAt == nil {
		return "", ErrNotPaid
	}
	var b strings.Builder
	b.WriteString(delimiter("Begin receipt"))
	fmt.Fprintf(&b, "Time of Sale: %s\n\n", snap.CompletedAt.Format(timeLayout))
	for _, line := range snap.Lines {
		unit := pricing.UnitGross(pricing.Item{Qty: 1, UnitPrice: line.UnitPrice, VATPercent: line.VATPercent})
		fmt.Fprintf(&b, "%-12s %4d x %8s %10s %s\n",
			truncate(line.Description, 12), line.Quantity, money(unit), money(line.Gross), currency)
	}
	b.WriteString("\n")
	amountLine(&b, "Discount:", "-"+money(snap.Discount), currency)
	amountLine(&b, "Total VAT:", money(snap.TotalVAT), currency)
	b.WriteString("\n")
	amountLine(&b, "Total (incl. VAT):", money(snap.Payment.TotalPrice), currency)
	amountLine(&b, "Cash:", money(snap.Payment.AmountPaid), currency)
	amountLine(&b, "Change:", money(snap.Payment.Change), currency)
	b.WriteString(delimiter("End receipt"))
	return b.String(), nil
}

// Printer writes formatted receipts to Out.
type Printer struct {
	Out      io.Writer
	Currency string

	mu sync.Mutex
}

// Print implements the receipt sink of a register.
func (p *Printer) Print(_ context.Context, snap sale.Snapshot) error {
	text, err := Format(snap, p.Currency)
	if err != nil {
		return err
	}
	if p.Out == nil {
		return errors.New("receipt: printer output not configured")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = io.WriteString(p.Out, text)
	return err
}

func money(v decimal.Decimal) string {
	return pricing.Round2(v).StringFixed(2)
}

func amountLine(b *strings.Builder, label, amount, currency string) {
	fmt.Fprintf(b, "%-*s %10s %s\n", labelWidth, label, amount, currency)
}

func delimiter(title string) string {
	return fmt.Sprintf("------------------ %-14s------------------\n", title)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
