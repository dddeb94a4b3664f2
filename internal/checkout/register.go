package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/discount"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/sale"
)

// ErrNoSaleInProgress is returned when a register operation needs a sale but none was started.
var ErrNoSaleInProgress = errors.New("no sale in progress")

// ItemLookup resolves catalog items by id.
type ItemLookup interface {
	Lookup(ctx context.Context, id int) (catalog.Item, error)
}

// ReceiptSink prints the receipt of a completed sale.
type ReceiptSink interface {
	Print(ctx context.Context, snap sale.Snapshot) error
}

// AccountingSink books a completed sale.
type AccountingSink interface {
	Record(ctx context.Context, snap sale.Snapshot) error
}

// InventorySink removes sold quantities from stock.
type InventorySink interface {
	Deduct(ctx context.Context, snap sale.Snapshot) error
}

// Deps are the collaborators shared by every register.
type Deps struct {
	Catalog    ItemLookup
	Discounts  *discount.Catalog
	Receipt    ReceiptSink
	Accounting AccountingSink
	Inventory  InventorySink
	Events     *events.Bus
	Metrics    *obs.CheckoutMetrics
	Logger     zerolog.Logger
	Now        func() time.Time
}

func (d Deps) validate() error {
	if d.Catalog == nil {
		return errors.New("checkout: item catalog is required")
	}
	if d.Discounts == nil {
		return errors.New("checkout: discount catalog is required")
	}
	return nil
}

// ScanResult reports the scanned item together with the running totals.
type ScanResult struct {
	Item         catalog.Item    `json:"item"`
	Quantity     int             `json:"quantity"`
	RunningTotal decimal.Decimal `json:"runningTotal"`
	TotalVAT     decimal.Decimal `json:"totalVat"`
}

// DiscountResult describes what a discount request took off the sale.
type DiscountResult struct {
	ItemsAmount     decimal.Decimal `json:"itemsAmount"`
	CustomerPercent int             `json:"customerPercent"`
	TotalPercent    int             `json:"totalPercent"`
	Applied         decimal.Decimal `json:"applied"`
	Sale            sale.Snapshot   `json:"sale"`
}

// PaymentResult is the outcome of settling a sale.
type PaymentResult struct {
	Change decimal.Decimal `json:"change"`
	Sale   sale.Snapshot   `json:"sale"`
}

// Register drives the lifecycle of one sale at a time. Operations on the
// same register are serialized.
type Register struct {
	id     string
	deps   Deps
	tracer trace.Tracer

	mu      sync.Mutex
	current *sale.Sale
	// done holds the completion steps that succeeded for the current sale.
	done     map[string]bool
	finished bool
}

// NewRegister builds a register identified by id.
func NewRegister(id string, deps Deps) (*Register, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Register{id: id, deps: deps, tracer: otel.Tracer("checkout.Register")}, nil
}

// ID returns the register identifier.
func (r *Register) ID() string { return r.id }

func (r *Register) now() time.Time {
	if r.deps.Now != nil {
		return r.deps.Now()
	}
	return time.Now()
}

func (r *Register) start(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := r.tracer.Start(ctx, "Register."+op)
	span.SetAttributes(attribute.String("register.id", r.id))
	return ctx, span
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// StartSale opens a new sale, replacing any previous one.
func (r *Register) StartSale(ctx context.Context) (uuid.UUID, error) {
	_, span := r.start(ctx, "StartSale")
	defer finish(span, nil)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && !r.current.Completed() {
		r.deps.Logger.Warn().Str("register_id", r.id).Str("sale_id", r.current.ID().String()).Msg("abandoning open sale")
	}
	r.current = sale.New()
	r.done = map[string]bool{}
	r.finished = false
	span.SetAttributes(attribute.String("sale.id", r.current.ID().String()))
	r.deps.Logger.Info().Str("register_id", r.id).Str("sale_id", r.current.ID().String()).Msg("sale started")
	return r.current.ID(), nil
}

// ScanItem looks up itemID and adds quantity units of it to the current sale.
func (r *Register) ScanItem(ctx context.Context, itemID, quantity int) (res ScanResult, err error) {
	ctx, span := r.start(ctx, "ScanItem")
	span.SetAttributes(attribute.Int("item.id", itemID), attribute.Int("item.quantity", quantity))
	defer func() {
		if err != nil {
			r.countScanError(err)
		}
		finish(span, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return ScanResult{}, ErrNoSaleInProgress
	}
	if r.current.Completed() {
		return ScanResult{}, sale.ErrSaleCompleted
	}
	if quantity <= 0 {
		return ScanResult{}, sale.ErrInvalidQuantity
	}
	item, err := r.deps.Catalog.Lookup(ctx, itemID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan item %d: %w", itemID, err)
	}
	if err := r.current.AddItem(item, quantity); err != nil {
		return ScanResult{}, err
	}
	if r.deps.Metrics != nil {
		r.deps.Metrics.ItemsScanned.Inc()
	}
	return ScanResult{
		Item:         item,
		Quantity:     quantity,
		RunningTotal: r.current.TotalPrice(),
		TotalVAT:     r.current.TotalVAT(),
	}, nil
}

func (r *Register) countScanError(err error) {
	if r.deps.Metrics == nil {
		return
	}
	reason := "other"
	switch {
	case errors.Is(err, ErrNoSaleInProgress):
		reason = "no_sale"
	case errors.Is(err, sale.ErrSaleCompleted):
		reason = "sale_completed"
	case errors.Is(err, sale.ErrInvalidQuantity):
		reason = "invalid_quantity"
	case errors.Is(err, catalog.ErrItemNotFound):
		reason = "item_not_found"
	case errors.Is(err, catalog.ErrUnavailable):
		reason = "catalog_unavailable"
	}
	r.deps.Metrics.ScanErrors.WithLabelValues(reason).Inc()
}

// EndSale closes scanning and returns the total to pay.
func (r *Register) EndSale(ctx context.Context) (decimal.Decimal, error) {
	_, span := r.start(ctx, "EndSale")
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		finish(span, ErrNoSaleInProgress)
		return decimal.Zero, ErrNoSaleInProgress
	}
	finish(span, nil)
	return r.current.TotalPrice(), nil
}

// RequestDiscount applies the discounts customerID is eligible for. Item
// discounts go first as a fixed amount, then the customer percentage, then the
// total-threshold percentage. The threshold is matched against the total before
// any of this request's discounts.
func (r *Register) RequestDiscount(ctx context.Context, customerID int) (res DiscountResult, err error) {
	_, span := r.start(ctx, "RequestDiscount")
	span.SetAttributes(attribute.Int("customer.id", customerID))
	defer func() { finish(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return DiscountResult{}, ErrNoSaleInProgress
	}
	if r.current.Completed() {
		return DiscountResult{}, sale.ErrSaleCompleted
	}
	s := r.current
	totalBefore := s.TotalPrice()
	rules := r.deps.Discounts

	res.ItemsAmount = rules.ForItems(s.DiscountItems())
	res.CustomerPercent = rules.ForCustomer(customerID)
	res.TotalPercent = rules.ForTotal(totalBefore)

	steps := []struct {
		axis string
		d    discount.Discount
	}{
		{"items", discount.Fixed(res.ItemsAmount)},
		{"customer", discount.Percentage(decimal.NewFromInt(int64(res.CustomerPercent)))},
		{"total", discount.Percentage(decimal.NewFromInt(int64(res.TotalPercent)))},
	}
	applied := decimal.Zero
	for _, step := range steps {
		amount, err := s.ApplyDiscount(step.d)
		if err != nil {
			return DiscountResult{}, err
		}
		if amount.IsPositive() && r.deps.Metrics != nil {
			r.deps.Metrics.DiscountsApplied.WithLabelValues(step.axis).Inc()
		}
		applied = applied.Add(amount)
	}
	res.Applied = applied
	res.Sale = s.Snapshot()
	r.deps.Logger.Info().
		Str("register_id", r.id).
		Str("sale_id", s.ID().String()).
		Int("customer_id", customerID).
		Str("applied", applied.StringFixed(2)).
		Str("total", res.Sale.TotalPrice.StringFixed(2)).
		Msg("discount applied")
	return res, nil
}

// Pay records the payment and completes the sale: receipt, accounting and
// inventory sinks in that order, then the sale.completed event. When a step
// fails the error is returned and the next Pay resumes from that step; steps
// that already succeeded are not repeated. Once completion has finished a
// repeated payment returns the recorded change.
func (r *Register) Pay(ctx context.Context, amountPaid decimal.Decimal) (res PaymentResult, err error) {
	ctx, span := r.start(ctx, "Pay")
	defer func() { finish(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return PaymentResult{}, ErrNoSaleInProgress
	}
	s := r.current
	resuming := s.Completed()
	change, err := s.RecordPayment(amountPaid, r.now())
	if err != nil {
		return PaymentResult{}, err
	}
	snap := s.Snapshot()
	if r.finished {
		return PaymentResult{Change: change, Sale: snap}, nil
	}
	span.SetAttributes(
		attribute.String("sale.id", snap.ID.String()),
		attribute.String("sale.total", snap.TotalPrice.StringFixed(2)),
		attribute.Bool("sale.resumed", resuming),
	)

	if err := r.complete(ctx, snap); err != nil {
		return PaymentResult{}, err
	}
	r.finished = true
	if r.deps.Metrics != nil {
		r.deps.Metrics.SalesCompleted.Inc()
	}
	r.deps.Logger.Info().
		Str("register_id", r.id).
		Str("sale_id", snap.ID.String()).
		Str("total", snap.TotalPrice.StringFixed(2)).
		Str("change", change.StringFixed(2)).
		Bool("resumed", resuming).
		Msg("sale completed")
	return PaymentResult{Change: change, Sale: snap}, nil
}

func (r *Register) complete(ctx context.Context, snap sale.Snapshot) error {
	steps := []struct {
		name string
		run  func(context.Context, sale.Snapshot) error
	}{
		{"receipt", printFn(r.deps.Receipt)},
		{"accounting", recordFn(r.deps.Accounting)},
		{"inventory", deductFn(r.deps.Inventory)},
		{"events", r.emitCompleted},
	}
	for _, step := range steps {
		if step.run == nil || r.done[step.name] {
			continue
		}
		if err := step.run(ctx, snap); err != nil {
			if r.deps.Metrics != nil {
				r.deps.Metrics.SinkFailures.WithLabelValues(step.name).Inc()
			}
			r.deps.Logger.Error().Err(err).Str("register_id", r.id).Str("sale_id", snap.ID.String()).Str("sink", step.name).Msg("completing sale failed")
			return fmt.Errorf("complete sale: %s: %w", step.name, err)
		}
		r.done[step.name] = true
	}
	return nil
}

func (r *Register) emitCompleted(ctx context.Context, snap sale.Snapshot) error {
	if r.deps.Events == nil {
		return nil
	}
	items := 0
	for _, l := range snap.Lines {
		items += l.Quantity
	}
	payload := events.SaleCompleted{
		SaleID:     snap.ID.String(),
		RegisterID: r.id,
		Total:      snap.TotalPrice.StringFixed(2),
		Discount:   snap.Discount.StringFixed(2),
		VAT:        snap.TotalVAT.StringFixed(2),
		Items:      items,
	}
	_, err := r.deps.Events.Emit(ctx, events.TopicSaleCompleted, snap.ID, payload)
	return err
}

func printFn(s ReceiptSink) func(context.Context, sale.Snapshot) error {
	if s == nil {
		return nil
	}
	return s.Print
}

func recordFn(s AccountingSink) func(context.Context, sale.Snapshot) error {
	if s == nil {
		return nil
	}
	return s.Record
}

func deductFn(s InventorySink) func(context.Context, sale.Snapshot) error {
	if s == nil {
		return nil
	}
	return s.Deduct
}

// Current returns a snapshot of the current sale.
func (r *Register) Current(ctx context.Context) (sale.Snapshot, error) {
	_, span := r.start(ctx, "Current")
	defer finish(span, nil)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return sale.Snapshot{}, ErrNoSaleInProgress
	}
	return r.current.Snapshot(), nil
}
