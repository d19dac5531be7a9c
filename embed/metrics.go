package embed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the orchestrator's Prometheus instruments.
type Metrics struct {
	chunksTotal   *prometheus.CounterVec
	providerCalls *prometheus.CounterVec
	callDuration  prometheus.Histogram
	tokensTotal   *prometheus.CounterVec
	breakerOpens  prometheus.Counter
}

// NewMetrics creates and registers the orchestrator metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		chunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobdex",
			Subsystem: "embed",
			Name:      "chunks_total",
			Help:      "Chunks processed by terminal state",
		}, []string{"state"}),

		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobdex",
			Subsystem: "embed",
			Name:      "provider_calls_total",
			Help:      "Embedding provider calls by outcome",
		}, []string{"outcome"}),

		callDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jobdex",
			Subsystem: "embed",
			Name:      "call_duration_seconds",
			Help:      "Embedding provider call duration",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobdex",
			Subsystem: "embed",
			Name:      "tokens_total",
			Help:      "Tokens consumed by embedding calls",
		}, []string{"model"}),

		breakerOpens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jobdex",
			Subsystem: "embed",
			Name:      "breaker_opens_total",
			Help:      "Times the provider circuit breaker rejected a batch",
		}),
	}

	reg.MustRegister(
		m.chunksTotal, m.providerCalls, m.callDuration,
		m.tokensTotal, m.breakerOpens,
	)

	return m
}

func (m *Metrics) observeChunk(state ChunkState) {
	if m == nil {
		return
	}
	m.chunksTotal.WithLabelValues(state.String()).Inc()
}

func (m *Metrics) observeCall(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(outcome).Inc()
	m.callDuration.Observe(seconds)
}

func (m *Metrics) observeTokens(model string, tokens int) {
	if m == nil {
		return
	}
	m.tokensTotal.WithLabelValues(model).Add(float64(tokens))
}

func (m *Metrics) observeBreakerOpen() {
	if m == nil {
		return
	}
	m.breakerOpens.Inc()
}
