package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordGenerated("en", "full")
	m.RecordGenerated("en", "full")
	m.RecordGenerated("de", "short")
	m.RecordDraw("en:opening.positive")
	m.RecordEviction("en:opening.positive", 3)
	m.RecordEviction("en:opening.positive", 0)
	m.RecordSave(nil)
	m.RecordSave(errors.New("disk full"))
	m.RecordScore(0.8)
	m.RecordFallback("uniqueness")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReviewsGenerated.WithLabelValues("en", "full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsGenerated.WithLabelValues("de", "short")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PhraseDraws.WithLabelValues("en")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Evictions.WithLabelValues("en")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerSaves.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReviewsScored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisFallbacks.WithLabelValues("uniqueness")))
}

func TestInstancesAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.RecordScore(0.5)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.ReviewsScored))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReviewsScored))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGenerated("en", "full")
		m.RecordDraw("en:generic")
		m.RecordEviction("en:generic", 1)
		m.RecordSave(nil)
		m.RecordScore(1)
		m.RecordFallback("sentiment")
	})
	totals, err := m.Totals()
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestTotalsAndFields(t *testing.T) {
	m := New()
	m.RecordGenerated("en", "full")
	m.RecordGenerated("fr", "full")
	m.RecordScore(0.7)
	m.RecordScore(0.9)

	totals, err := m.Totals()
	require.NoError(t, err)
	assert.Equal(t, 2.0, totals["reviewsynth_reviews_generated_total"])
	assert.Equal(t, 2.0, totals["reviewsynth_overall_score"])

	fields := m.Fields()
	require.Equal(t, 0, len(fields)%2)
	assert.Contains(t, fields, "reviews_generated_total")
}

func TestLocaleOf(t *testing.T) {
	assert.Equal(t, "en", localeOf("en:opening.positive"))
	assert.Equal(t, "unknown", localeOf("generic"))
}
