package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "not_found"
)

// OrderStoreMetrics records order store calls and the state of the live mirror.
type OrderStoreMetrics struct {
	duration   *prometheus.HistogramVec
	total      *prometheus.CounterVec
	mirrorSize prometheus.Gauge
	stale      prometheus.Gauge
}

// NewOrderStoreMetrics registers the order store metrics on reg. A nil
// registerer yields a no-op recorder.
func NewOrderStoreMetrics(reg prometheus.Registerer) *OrderStoreMetrics {
	if reg == nil {
		return &OrderStoreMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orders_store_op_duration_seconds",
		Help:    "Duration of order store operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_store_op_total",
		Help: "Order store operations by outcome.",
	}, []string{"op", "outcome"})
	mirrorSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orders_mirror_size",
		Help: "Orders held by the live mirror.",
	})
	stale := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orders_mirror_stale",
		Help: "1 while the live mirror is stale.",
	})
	reg.MustRegister(duration, total, mirrorSize, stale)
	return &OrderStoreMetrics{
		duration:   duration,
		total:      total,
		mirrorSize: mirrorSize,
		stale:      stale,
	}
}

// ObserveOp records one store call.
func (m *OrderStoreMetrics) ObserveOp(op, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	op = normalizeLabel(op)
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	m.total.WithLabelValues(op, normalizeLabel(outcome)).Inc()
}

// SetMirror publishes the mirror size and staleness.
func (m *OrderStoreMetrics) SetMirror(size int, stale bool) {
	if m == nil || m.mirrorSize == nil {
		return
	}
	m.mirrorSize.Set(float64(size))
	if stale {
		m.stale.Set(1)
		return
	}
	m.stale.Set(0)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
