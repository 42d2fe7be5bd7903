// Package metrics provides Prometheus metrics for the Q&A service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors. Registration is scoped
// to the given registerer so tests can use fresh registries.
type Metrics struct {
	AsksTotal                 *prometheus.CounterVec
	AskDuration               prometheus.Histogram
	LLMFailuresTotal          prometheus.Counter
	ConversationsCreatedTotal prometheus.Counter
}

// New creates and registers all collectors against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AsksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weatherqna_asks_total",
				Help: "Total number of completed ask turns by answer mode",
			},
			[]string{"mode"},
		),
		AskDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "weatherqna_ask_duration_seconds",
				Help:    "Duration of ask turns in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		LLMFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weatherqna_llm_failures_total",
				Help: "Total number of LLM attempts that fell back to the simulated answer",
			},
		),
		ConversationsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "weatherqna_conversations_created_total",
				Help: "Total number of conversations created",
			},
		),
	}
}

// RecordAsk records one completed ask turn.
func (m *Metrics) RecordAsk(mode string, duration time.Duration) {
	m.AsksTotal.WithLabelValues(mode).Inc()
	m.AskDuration.Observe(duration.Seconds())
}
