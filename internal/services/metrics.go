package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the instrument set for the consultation pipeline
type Metrics struct {
	Consultations    *prometheus.CounterVec
	StrategyAttempts *prometheus.CounterVec
	CacheHits        prometheus.Counter
	ConsultDuration  prometheus.Histogram
}

// NewMetrics registers the pipeline metrics on the given registerer. Tests
// pass a fresh prometheus.NewRegistry to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Consultations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nfce",
			Name:      "consultations_total",
			Help:      "Consultations by final outcome",
		}, []string{"outcome"}),
		StrategyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nfce",
			Name:      "strategy_attempts_total",
			Help:      "Extraction strategy attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nfce",
			Name:      "cache_hits_total",
			Help:      "Consultations answered from cache",
		}),
		ConsultDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nfce",
			Name:      "consultation_duration_seconds",
			Help:      "End-to-end consultation duration",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}

	reg.MustRegister(m.Consultations, m.StrategyAttempts, m.CacheHits, m.ConsultDuration)
	return m
}

// outcome labels shared between the counters
const (
	outcomeSuccess  = "success"
	outcomeEmpty    = "empty"
	outcomeFailed   = "failed"
	outcomeNotFound = "not_found"
)

func outcomeLabel(outcome StrategyOutcome) string {
	switch outcome {
	case OutcomeSuccess:
		return outcomeSuccess
	case OutcomeFailed:
		return outcomeFailed
	default:
		return outcomeEmpty
	}
}
