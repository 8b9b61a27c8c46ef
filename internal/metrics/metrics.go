// Package metrics exposes ledger activity to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/model"
)

// Metrics implements engine.Recorder on its own registry.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	treasury   prometheus.Gauge
	pending    prometheus.Gauge
	balances   *prometheus.GaugeVec
}

var _ engine.Recorder = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "foyer",
			Name:      "operations_total",
			Help:      "Ledger operations by outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "foyer",
			Name:      "operation_duration_seconds",
			Help:      "Time spent applying and saving a ledger operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"op"}),
		treasury: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "foyer",
			Name:      "treasury_points",
			Help:      "Points in the shared treasury.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "foyer",
			Name:      "pending_claims",
			Help:      "Claims awaiting parent approval.",
		}),
		balances: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "foyer",
			Name:      "member_points",
			Help:      "Spendable points per member.",
		}, []string{"member"}),
	}
	m.registry.MustRegister(
		m.operations, m.duration, m.treasury, m.pending, m.balances,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveOperation(op string, d time.Duration, err error) {
	m.operations.WithLabelValues(op, outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) ObserveState(st model.State) {
	m.treasury.Set(float64(st.Treasury))
	m.pending.Set(float64(len(st.Pending)))
	m.balances.Reset()
	for _, mem := range st.Members {
		m.balances.WithLabelValues(mem.Name).Set(float64(st.Ranking[mem.Name]))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case engine.IsDomainError(err):
		return "refused"
	default:
		return "error"
	}
}
