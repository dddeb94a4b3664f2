package resilience

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes breaker state and transitions.
type Metrics struct {
	State       *prometheus.GaugeVec
	Transitions *prometheus.CounterVec
}

// NewMetrics registers breaker collectors on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed,1=open,2=half-open",
		}, []string{"target"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transition_total",
			Help:      "Count of breaker state transitions",
		}, []string{"target", "from", "to"}),
	}
	if reg != nil {
		reg.MustRegister(m.State, m.Transitions)
	}
	return m
}

func (m *Metrics) observe(target string, from, to State) {
	if m == nil {
		return
	}
	m.State.WithLabelValues(target).Set(float64(to))
	m.Transitions.WithLabelValues(target, from.String(), to.String()).Inc()
}
