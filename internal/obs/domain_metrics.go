package obs

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics groups the register domain collectors.
type CheckoutMetrics struct {
	SalesCompleted   prometheus.Counter
	Revenue          prometheus.Gauge
	ItemsScanned     prometheus.Counter
	ScanErrors       *prometheus.CounterVec
	DiscountsApplied *prometheus.CounterVec
	SinkFailures     *prometheus.CounterVec
}

// NewCheckoutMetrics builds and registers the checkout collectors. A nil
// registerer falls back to the default registry.
func NewCheckoutMetrics(namespace string, reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &CheckoutMetrics{
		SalesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_completed_total",
			Help:      "Number of sales settled by a payment.",
		}),
		Revenue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "revenue_total",
			Help:      "Running total revenue of completed sales.",
		}),
		ItemsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_scanned_total",
			Help:      "Number of successful item scans.",
		}),
		ScanErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_errors_total",
			Help:      "Failed item scans by reason.",
		}, []string{"reason"}),
		DiscountsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discounts_applied_total",
			Help:      "Discounts applied to sales by axis.",
		}, []string{"axis"}),
		SinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_sink_failures_total",
			Help:      "Failures of receipt, accounting and inventory collaborators.",
		}, []string{"sink"}),
	}
	m.SalesCompleted = registerOrReuse(reg, m.SalesCompleted)
	m.Revenue = registerOrReuse(reg, m.Revenue)
	m.ItemsScanned = registerOrReuse(reg, m.ItemsScanned)
	m.ScanErrors = registerOrReuse(reg, m.ScanErrors)
	m.DiscountsApplied = registerOrReuse(reg, m.DiscountsApplied)
	m.SinkFailures = registerOrReuse(reg, m.SinkFailures)
	return m
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(fmt.Errorf("register checkout metric: %w", err))
	}
	return c
}
