// Package metrics provides Prometheus metrics for review generation and scoring.
package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reviewsynth"

// Metrics groups the collectors of one run. Each instance owns its registry so
// independent generators and tests never share counters. All methods are safe
// to call on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	// ReviewsGenerated counts generated reviews by locale and body form.
	ReviewsGenerated *prometheus.CounterVec

	// PhraseDraws counts tracker draws by locale.
	PhraseDraws *prometheus.CounterVec

	// Evictions counts phrases released by ledger eviction, by locale.
	Evictions *prometheus.CounterVec

	// LedgerSaves counts ledger persistence attempts by status.
	LedgerSaves *prometheus.CounterVec

	// ReviewsScored counts scored reviews.
	ReviewsScored prometheus.Counter

	// AnalysisFallbacks counts scorer fallbacks by metric.
	AnalysisFallbacks *prometheus.CounterVec

	// OverallScore observes the distribution of overall quality scores.
	OverallScore prometheus.Histogram
}

// New registers a fresh set of collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		ReviewsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_generated_total",
				Help:      "Total number of generated reviews",
			},
			[]string{"locale", "form"},
		),
		PhraseDraws: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "phrase_draws_total",
				Help:      "Total number of phrases drawn through the uniqueness tracker",
			},
			[]string{"locale"},
		),
		Evictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_evictions_total",
				Help:      "Total number of phrases released from the usage ledger",
			},
			[]string{"locale"},
		),
		LedgerSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_saves_total",
				Help:      "Total number of ledger persistence attempts",
			},
			[]string{"status"},
		),
		ReviewsScored: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_scored_total",
				Help:      "Total number of scored reviews",
			},
		),
		AnalysisFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_fallbacks_total",
				Help:      "Total number of heuristic fallbacks taken by the scorer",
			},
			[]string{"metric"},
		),
		OverallScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "overall_score",
				Help:      "Distribution of overall review quality scores",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
	}
}

// RecordGenerated records one generated review.
func (m *Metrics) RecordGenerated(locale, form string) {
	if m == nil {
		return
	}
	m.ReviewsGenerated.WithLabelValues(locale, form).Inc()
}

// RecordDraw records one tracker draw for a "locale:category" ledger key.
func (m *Metrics) RecordDraw(key string) {
	if m == nil {
		return
	}
	m.PhraseDraws.WithLabelValues(localeOf(key)).Inc()
}

// RecordEviction records n phrases evicted under key.
func (m *Metrics) RecordEviction(key string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Evictions.WithLabelValues(localeOf(key)).Add(float64(n))
}

// RecordSave records a ledger save attempt.
func (m *Metrics) RecordSave(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LedgerSaves.WithLabelValues(status).Inc()
}

// RecordScore records one scored review.
func (m *Metrics) RecordScore(overall float64) {
	if m == nil {
		return
	}
	m.ReviewsScored.Inc()
	m.OverallScore.Observe(overall)
}

// RecordFallback records a scorer fallback for metric.
func (m *Metrics) RecordFallback(metric string) {
	if m == nil {
		return
	}
	m.AnalysisFallbacks.WithLabelValues(metric).Inc()
}

func localeOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}

// Totals sums every counter family across its labels, keyed by metric name.
// Histograms report their sample count.
func (m *Metrics) Totals() (map[string]float64, error) {
	out := make(map[string]float64)
	if m == nil {
		return out, nil
	}
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}
	for _, mf := range families {
		total := 0.0
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				total += c.GetValue()
			}
			if h := metric.GetHistogram(); h != nil {
				total += float64(h.GetSampleCount())
			}
		}
		out[mf.GetName()] = total
	}
	return out, nil
}

// Fields flattens Totals into sorted key/value pairs for structured logging.
func (m *Metrics) Fields() []any {
	totals, err := m.Totals()
	if err != nil {
		return []any{"metrics_error", err.Error()}
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]any, 0, 2*len(names))
	for _, name := range names {
		fields = append(fields, strings.TrimPrefix(name, namespace+"_"), totals[name])
	}
	return fields
}
