package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/app"
	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/checkout"
	"github.com/noah-isme/backend-pos/internal/config"
	"github.com/noah-isme/backend-pos/internal/obs"
)

type scan struct {
	itemID   int
	quantity int
}

type scenario struct {
	name     string
	scans    []scan
	customer *int
	paid     string
}

func customer(id int) *int { return &id }

var scenarios = []scenario{
	{name: "basic", scans: []scan{{1, 1}, {2, 1}}, paid: "100"},
	{name: "unknown-item", scans: []scan{{99, 1}, {69, 1}, {2, 1}}, paid: "100"},
	{name: "repeated-item", scans: []scan{{1, 1}, {2, 1}, {1, 1}}, paid: "100"},
	{name: "multiple-quantity", scans: []scan{{1, 4}, {2, 5}}, paid: "200"},
	{name: "discount", scans: []scan{{1, 4}, {2, 5}}, customer: customer(1), paid: "120"},
}

func main() {
	var (
		only      = flag.String("scenario", "", "comma separated scenarios to run; empty runs all")
		logFormat = flag.String("log-format", "console", "log format: json or console")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := obs.NewLoggerTo(os.Stderr, *logFormat, *logLevel)
	if err := run(context.Background(), cfg, logger, os.Stdout, selected(*only)); err != nil {
		logger.Error().Err(err).Msg("demo failed")
		os.Exit(1)
	}
}

func selected(csv string) map[string]bool {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	out := map[string]bool{}
	for _, name := range strings.Split(csv, ",") {
		out[strings.TrimSpace(name)] = true
	}
	return out
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, out io.Writer, only map[string]bool) error {
	service, err := app.Build(ctx, app.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
		Receipts: out,
	})
	if err != nil {
		return err
	}
	reg, err := service.Registers.Get("demo")
	if err != nil {
		return err
	}
	for _, sc := range scenarios {
		if only != nil && !only[sc.name] {
			continue
		}
		if err := play(ctx, reg, sc, cfg.CurrencyCode, out); err != nil {
			return fmt.Errorf("%s: %w", sc.name, err)
		}
	}
	fmt.Fprintf(out, "Total revenue: %s %s\n", service.Revenue.Total().StringFixed(2), cfg.CurrencyCode)
	return nil
}

func play(ctx context.Context, reg *checkout.Register, sc scenario, currency string, out io.Writer) error {
	fmt.Fprintf(out, "[%s]\n\n", sc.name)
	if _, err := reg.StartSale(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "New sale started.")
	for _, s := range sc.scans {
		fmt.Fprintln(out, "------------------------------")
		fmt.Fprintf(out, "Add %d items with item id %d\n", s.quantity, s.itemID)
		res, err := reg.ScanItem(ctx, s.itemID, s.quantity)
		switch {
		case errors.Is(err, catalog.ErrItemNotFound):
			fmt.Fprintf(out, "No item found with ID: %d. Please try another item.\n", s.itemID)
			continue
		case errors.Is(err, catalog.ErrUnavailable):
			fmt.Fprintln(out, "Could not reach the item catalog. Please try again later.")
			continue
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "Item ID: %d\nItem name: %s\nItem cost: %s %s\nVAT: %d%%\n\nTotal cost (incl VAT): %s %s\nTotal VAT: %s %s\n",
			res.Item.ID, res.Item.Description, res.Item.UnitPrice.StringFixed(2), currency, res.Item.VATPercent,
			res.RunningTotal.StringFixed(2), currency, res.TotalVAT.StringFixed(2), currency)
	}
	fmt.Fprintln(out, "------------------------------")

	total, err := reg.EndSale(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sale ended. Total price: %s %s\n", total.StringFixed(2), currency)

	if sc.customer != nil {
		res, err := reg.RequestDiscount(ctx, *sc.customer)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Discounts applied. New total price: %s %s\n", res.Sale.TotalPrice.StringFixed(2), currency)
	}

	paid, err := decimal.NewFromString(sc.paid)
	if err != nil {
		return err
	}
	res, err := reg.Pay(ctx, paid)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Change to give the customer: %s %s\n\n", res.Change.StringFixed(2), currency)
	return nil
}
