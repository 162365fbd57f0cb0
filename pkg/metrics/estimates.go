package metrics

import "github.com/prometheus/client_golang/prometheus"

// EstimateMetrics counts generated estimates and numbering fallbacks.
type EstimateMetrics struct {
	generated prometheus.Counter
	fallback  prometheus.Counter
}

func NewEstimateMetrics(reg prometheus.Registerer) *EstimateMetrics {
	if reg == nil {
		return &EstimateMetrics{}
	}
	generated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "estimates_generated_total",
		Help: "Estimates rendered.",
	})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "estimate_number_fallback_total",
		Help: "Estimate numbers derived from the clock because the counter could not be persisted.",
	})
	reg.MustRegister(generated, fallback)
	return &EstimateMetrics{generated: generated, fallback: fallback}
}

func (m *EstimateMetrics) IncGenerated() {
	if m == nil || m.generated == nil {
		return
	}
	m.generated.Inc()
}

func (m *EstimateMetrics) IncFallback() {
	if m == nil || m.fallback == nil {
		return
	}
	m.fallback.Inc()
}
