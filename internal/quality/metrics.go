package quality

import (
	"sort"
	"strings"

	"reviewsynth/internal/sentiment"
)

// Metric names one of the eight sub-scores.
type Metric string

const (
	MetricAuthenticity Metric = "authenticity"
	MetricReadability  Metric = "readability"
	MetricLanguage     Metric = "language"
	MetricSentiment    Metric = "sentiment"
	MetricDepth        Metric = "depth"
	MetricUniqueness   Metric = "uniqueness"
	MetricDemographic  Metric = "demographic"
	MetricCommercial   Metric = "commercial"
)

// Metrics lists every sub-score in report order.
var Metrics = []Metric{
	MetricAuthenticity,
	MetricReadability,
	MetricLanguage,
	MetricSentiment,
	MetricDepth,
	MetricUniqueness,
	MetricDemographic,
	MetricCommercial,
}

// Scores holds the eight sub-scores, each in [0,1]. The same shape carries
// the overall weights.
type Scores struct {
	Authenticity float64 `json:"authenticity"`
	Readability  float64 `json:"readability"`
	Language     float64 `json:"language"`
	Sentiment    float64 `json:"sentiment"`
	Depth        float64 `json:"depth"`
	Uniqueness   float64 `json:"uniqueness"`
	Demographic  float64 `json:"demographic"`
	Commercial   float64 `json:"commercial"`
}

// Vector returns the scores in Metrics order.
func (s Scores) Vector() []float64 {
	return []float64{
		s.Authenticity,
		s.Readability,
		s.Language,
		s.Sentiment,
		s.Depth,
		s.Uniqueness,
		s.Demographic,
		s.Commercial,
	}
}

// Get returns the score of m.
func (s Scores) Get(m Metric) float64 {
	switch m {
	case MetricAuthenticity:
		return s.Authenticity
	case MetricReadability:
		return s.Readability
	case MetricLanguage:
		return s.Language
	case MetricSentiment:
		return s.Sentiment
	case MetricDepth:
		return s.Depth
	case MetricUniqueness:
		return s.Uniqueness
	case MetricDemographic:
		return s.Demographic
	case MetricCommercial:
		return s.Commercial
	}
	return 0
}

// DefaultWeights are the fixed weights of the overall score. They sum to 1.
func DefaultWeights() Scores {
	return Scores{
		Authenticity: 0.25,
		Readability:  0.15,
		Language:     0.15,
		Sentiment:    0.15,
		Depth:        0.10,
		Uniqueness:   0.10,
		Demographic:  0.05,
		Commercial:   0.05,
	}
}

// Report is the quality assessment of one review
type Report struct {
	ReviewID        string   `json:"review_id,omitempty"`
	Rating          int      `json:"rating"`
	Scores          Scores   `json:"scores"`
	Overall         float64  `json:"overall"`
	Grade           string   `json:"grade"` // A/B/C/D
	Issues          []string `json:"issues"`
	Recommendations []string `json:"recommendations"`
	Fallbacks       []Metric `json:"fallbacks,omitempty"` // Metrics computed by a fallback heuristic
	Passed          bool     `json:"passed"`              // No issues raised

	Tone sentiment.SentimentClassification `json:"tone,omitempty"` // Empty when the analyser was unavailable
}

// ToneEmoji returns the emoji for the report's tone, or "" when unknown.
func (r Report) ToneEmoji() string {
	return sentiment.SentimentEmoji[r.Tone]
}

// GradeLetter returns the letter of the grade ("A - EXCELLENT" -> "A").
func (r Report) GradeLetter() string {
	return strings.Split(r.Grade, " ")[0]
}

// Rule maps a sub-score bucket to a message. A score below Below raises the
// message as an issue when Critical is set, otherwise as a recommendation.
type Rule struct {
	Metric   Metric
	Below    float64
	Critical bool
	Message  string
}

// GradeThresholds defines the floor of a letter grade
type GradeThresholds struct {
	MinOverall      float64
	MinAuthenticity float64
}

// Thresholds configures grading and the issue table
type Thresholds struct {
	GradeA GradeThresholds
	GradeB GradeThresholds
	GradeC GradeThresholds
	Rules  []Rule
}

// DefaultThresholds returns the standard grading thresholds and message table.
// Rules of the same metric are ordered from the lowest bucket up; only the
// first matching rule of each metric fires.
func DefaultThresholds() Thresholds {
	return Thresholds{
		GradeA: GradeThresholds{MinOverall: 0.80, MinAuthenticity: 0.70},
		GradeB: GradeThresholds{MinOverall: 0.65, MinAuthenticity: 0.50},
		GradeC: GradeThresholds{MinOverall: 0.50},
		Rules: []Rule{
			{MetricAuthenticity, 0.5, true, "Review reads as inauthentic"},
			{MetricAuthenticity, 0.7, false, "Add personal experience such as when and how the product was used"},
			{MetricReadability, 0.5, true, "Review is hard to read"},
			{MetricReadability, 0.8, false, "Balance sentence length for easier reading"},
			{MetricLanguage, 0.5, true, "Text does not match the review locale"},
			{MetricLanguage, 0.8, false, "Remove phrasing borrowed from a neighbouring language"},
			{MetricSentiment, 0.5, true, "Sentiment contradicts the star rating"},
			{MetricSentiment, 0.8, false, "Align the tone more closely with the star rating"},
			{MetricDepth, 0.3, true, "Review carries almost no product detail"},
			{MetricDepth, 0.6, false, "Mention concrete aspects like fit, material or value"},
			{MetricUniqueness, 0.3, true, "Review nearly duplicates an earlier review"},
			{MetricUniqueness, 0.7, false, "Reword to reduce overlap with earlier reviews"},
			{MetricDemographic, 0.6, false, "Use vocabulary typical of the reviewer persona"},
			{MetricCommercial, 0.3, false, "Add a usage scenario or a comparison to help shoppers decide"},
		},
	}
}

// apply evaluates the rule table against scores.
func (t Thresholds) apply(scores Scores) (issues, recommendations []string) {
	fired := make(map[Metric]bool)
	for _, rule := range t.Rules {
		if fired[rule.Metric] || scores.Get(rule.Metric) >= rule.Below {
			continue
		}
		fired[rule.Metric] = true
		if rule.Critical {
			issues = append(issues, rule.Message)
		} else {
			recommendations = append(recommendations, rule.Message)
		}
	}
	return issues, recommendations
}

// GradeReview assigns a letter grade based on the overall score and
// authenticity
func GradeReview(overall float64, scores Scores, thresholds Thresholds) string {
	if overall >= thresholds.GradeA.MinOverall && scores.Authenticity >= thresholds.GradeA.MinAuthenticity {
		return "A - EXCELLENT"
	}
	if overall >= thresholds.GradeB.MinOverall && scores.Authenticity >= thresholds.GradeB.MinAuthenticity {
		return "B - GOOD"
	}
	if overall >= thresholds.GradeC.MinOverall && scores.Authenticity >= thresholds.GradeC.MinAuthenticity {
		return "C - FAIR"
	}
	return "D - POOR"
}

// MessageCount is a message and how often it was raised.
type MessageCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// topMessages returns the n most frequent messages, ties broken
// alphabetically.
func topMessages(counts map[string]int, n int) []MessageCount {
	out := make([]MessageCount, 0, len(counts))
	for msg, c := range counts {
		out = append(out, MessageCount{Message: msg, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Message < out[j].Message
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
