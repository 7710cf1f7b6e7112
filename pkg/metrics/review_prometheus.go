package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// =============================================================================
// Prometheus Collectors
// =============================================================================

// AnalysisMetrics groups the counters recorded by the sentiment pipeline.
// A nil *AnalysisMetrics is valid and records nothing.
type AnalysisMetrics struct {
	analyses    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheEvents *prometheus.CounterVec
	escalations *prometheus.CounterVec
	fallbacks   prometheus.Counter
	modelTokens *prometheus.CounterVec
}

// NewAnalysisMetrics creates the collectors and registers them on reg.
func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	m := &AnalysisMetrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "review",
			Name:      "analyses_total",
			Help:      "Review analyses by depth and source.",
		}, []string{"depth", "source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "review",
			Name:      "analysis_duration_seconds",
			Help:      "Time spent producing an analysis, by depth.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10, 20},
		}, []string{"depth"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "review",
			Name:      "fingerprint_cache_events_total",
			Help:      "Fingerprint cache hits, misses and errors.",
		}, []string{"event"}),
		escalations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "review",
			Name:      "escalations_total",
			Help:      "Reviews sent to deep analysis, by the rule that fired.",
		}, []string{"reason"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "review",
			Name:      "deep_fallbacks_total",
			Help:      "Escalated analyses that fell back to local composition.",
		}),
		modelTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "review",
			Name:      "model_tokens_total",
			Help:      "Tokens consumed by model calls.",
		}, []string{"model", "kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.analyses, m.duration, m.cacheEvents, m.escalations, m.fallbacks, m.modelTokens)
	}
	return m
}

// ObserveAnalysis records one completed analysis.
func (m *AnalysisMetrics) ObserveAnalysis(depth, source string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(depth, source).Inc()
	m.duration.WithLabelValues(depth).Observe(elapsed.Seconds())
}

// CacheEvent records "hit", "miss", "error" or "store".
func (m *AnalysisMetrics) CacheEvent(event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(event).Inc()
}

// Escalation records a review sent to deep analysis.
func (m *AnalysisMetrics) Escalation(reason string) {
	if m == nil {
		return
	}
	m.escalations.WithLabelValues(reason).Inc()
}

// DeepFallback records a failed model analysis.
func (m *AnalysisMetrics) DeepFallback() {
	if m == nil {
		return
	}
	m.fallbacks.Inc()
}

// Tokens records prompt and completion token usage.
func (m *AnalysisMetrics) Tokens(model string, prompt, completion int) {
	if m == nil {
		return
	}
	m.modelTokens.WithLabelValues(model, "prompt").Add(float64(prompt))
	m.modelTokens.WithLabelValues(model, "completion").Add(float64(completion))
}
