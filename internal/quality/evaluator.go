package quality

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"reviewsynth/internal/core"
	"reviewsynth/internal/langid"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/logger"
	"reviewsynth/internal/metrics"
	"reviewsynth/internal/sentiment"
	"reviewsynth/internal/textclean"
)

// topMessageCount is how many issues and recommendations a batch summary keeps.
const topMessageCount = 5

// Options configures an Evaluator. Nil analysers disable the analyser and
// leave the metric to its fallback heuristic.
type Options struct {
	Identifier    langid.Identifier
	Analyzer      sentiment.Analyzer
	Vectorizer    Vectorizer
	Weights       Scores
	Thresholds    Thresholds
	HistoryWindow int
	JaccardWindow int
	Metrics       *metrics.Metrics
}

// DefaultOptions wires the trigram identifier, the lexicon analyser and the
// TF-IDF vectoriser with the default windows.
func DefaultOptions() Options {
	opts := Options{
		Identifier:    langid.NewTrigramIdentifier(langid.DefaultMinConfidence),
		Analyzer:      sentiment.NewLexiconAnalyzer(),
		Weights:       DefaultWeights(),
		Thresholds:    DefaultThresholds(),
		HistoryWindow: DefaultHistoryWindow,
		JaccardWindow: DefaultJaccardWindow,
	}
	if v, err := NewTFIDFVectorizer(DefaultCacheSize); err == nil {
		opts.Vectorizer = v
	}
	return opts
}

// Evaluator scores reviews on eight independent quality metrics. It holds no
// state between calls besides the vectoriser's term cache.
type Evaluator struct {
	registry *locale.Registry
	opts     Options
}

// NewEvaluator creates an evaluator that looks up locale packs in registry
func NewEvaluator(registry *locale.Registry, opts Options) *Evaluator {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = DefaultHistoryWindow
	}
	if opts.JaccardWindow <= 0 {
		opts.JaccardWindow = DefaultJaccardWindow
	}
	if opts.Weights == (Scores{}) {
		opts.Weights = DefaultWeights()
	}
	if len(opts.Thresholds.Rules) == 0 && opts.Thresholds.GradeA == (GradeThresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	return &Evaluator{registry: registry, opts: opts}
}

// ScoreReview scores review. product adds the product-mention depth signal
// when non-nil; corpus holds earlier review bodies, oldest first, and is
// only read.
func (e *Evaluator) ScoreReview(review core.Review, product *core.Product, corpus []string) Report {
	var pack *locale.Pack
	if e.registry != nil {
		pack, _ = e.registry.Lookup(review.Locale)
	}
	full := textclean.StripMarkup(review.Title + " " + review.Body)

	report := Report{
		ReviewID:        review.ID,
		Rating:          review.Rating,
		Issues:          []string{},
		Recommendations: []string{},
	}
	fellBack := func(m Metric, fallback bool) {
		if fallback {
			report.Fallbacks = append(report.Fallbacks, m)
			e.opts.Metrics.RecordFallback(string(m))
		}
	}

	var fallback bool
	var flags AuthenticityFlags
	report.Scores.Authenticity, flags = authenticity(review.Body, pack)
	report.Scores.Readability = readability(review.Body)
	report.Scores.Language, fallback = languageConsistency(e.opts.Identifier, full, review.Locale, pack)
	fellBack(MetricLanguage, fallback)
	report.Scores.Sentiment, report.Tone, fallback = sentimentFit(e.opts.Analyzer, full, review.Rating, pack)
	fellBack(MetricSentiment, fallback)
	report.Scores.Depth = contentDepth(review.Body, product, pack)
	report.Scores.Uniqueness, fallback = uniqueness(e.opts.Vectorizer, review.Body, corpus, e.opts.HistoryWindow, e.opts.JaccardWindow)
	fellBack(MetricUniqueness, fallback)
	report.Scores.Demographic = demographicAlignment(full, review.Persona, pack)
	report.Scores.Commercial = commercialValue(full, review.Rating, pack)

	report.Overall = clamp01(floats.Dot(e.opts.Weights.Vector(), report.Scores.Vector()))
	report.Grade = GradeReview(report.Overall, report.Scores, e.opts.Thresholds)

	issues, recommendations := e.opts.Thresholds.apply(report.Scores)
	report.Issues = append(report.Issues, issues...)
	report.Recommendations = append(report.Recommendations, recommendations...)
	issues, recommendations = flags.messages()
	report.Issues = append(report.Issues, issues...)
	report.Recommendations = append(report.Recommendations, recommendations...)
	report.Passed = len(report.Issues) == 0

	e.opts.Metrics.RecordScore(report.Overall)
	logger.Debug("Scored review",
		"review_id", review.ID,
		"locale", review.Locale,
		"overall", report.Overall,
		"grade", report.GradeLetter())

	return report
}

// BatchSummary aggregates the reports of one batch
type BatchSummary struct {
	Count              int                `json:"count"`
	MeanOverall        float64            `json:"mean_overall"`
	StdDevOverall      float64            `json:"stddev_overall"`
	MetricMeans        map[Metric]float64 `json:"metric_means"`
	GradeCounts        map[string]int     `json:"grade_counts"`
	RatingCounts       map[int]int        `json:"rating_counts"`
	TopIssues          []MessageCount     `json:"top_issues"`
	TopRecommendations []MessageCount     `json:"top_recommendations"`
	Recommendation     string             `json:"recommendation"`
}

// ScoreBatch scores reviews in order. Review i is compared for uniqueness
// against the bodies of reviews 0..i-1 only, so reordering a batch changes
// its uniqueness scores.
func (e *Evaluator) ScoreBatch(reviews []core.Review, product *core.Product) ([]Report, BatchSummary) {
	reports := make([]Report, 0, len(reviews))
	corpus := make([]string, 0, len(reviews))

	for _, review := range reviews {
		reports = append(reports, e.ScoreReview(review, product, corpus))
		if review.Body != "" {
			corpus = append(corpus, review.Body)
		}
	}
	return reports, Summarize(reports)
}

// Summarize aggregates reports into a BatchSummary.
func Summarize(reports []Report) BatchSummary {
	summary := BatchSummary{
		Count:        len(reports),
		MetricMeans:  make(map[Metric]float64, len(Metrics)),
		GradeCounts:  make(map[string]int),
		RatingCounts: make(map[int]int),
	}
	if len(reports) == 0 {
		summary.TopIssues = []MessageCount{}
		summary.TopRecommendations = []MessageCount{}
		return summary
	}

	overall := make([]float64, len(reports))
	issues := make(map[string]int)
	recommendations := make(map[string]int)
	for i, r := range reports {
		overall[i] = r.Overall
		for _, m := range Metrics {
			summary.MetricMeans[m] += r.Scores.Get(m)
		}
		summary.GradeCounts[r.GradeLetter()]++
		summary.RatingCounts[r.Rating]++
		for _, msg := range r.Issues {
			issues[msg]++
		}
		for _, msg := range r.Recommendations {
			recommendations[msg]++
		}
	}
	for _, m := range Metrics {
		summary.MetricMeans[m] /= float64(len(reports))
	}

	if len(overall) > 1 {
		summary.MeanOverall, summary.StdDevOverall = stat.MeanStdDev(overall, nil)
	} else {
		summary.MeanOverall = overall[0]
	}
	summary.TopIssues = topMessages(issues, topMessageCount)
	summary.TopRecommendations = topMessages(recommendations, topMessageCount)

	switch {
	case summary.MetricMeans[MetricAuthenticity] < 0.5:
		summary.Recommendation = "🔴 CRITICAL: Reviews read as inauthentic - add personal and experience phrases to the locale packs"
	case summary.MetricMeans[MetricUniqueness] < 0.7:
		summary.Recommendation = "🟡 WARNING: High overlap between reviews - enlarge phrase banks or raise the eviction threshold"
	case summary.MeanOverall < 0.65:
		summary.Recommendation = "🟡 WARNING: Mediocre overall quality - review the lowest scoring metrics"
	default:
		summary.Recommendation = "🟢 GOOD: Generated reviews are of acceptable quality"
	}
	return summary
}

// PrintReport writes a formatted quality report for one review
func PrintReport(w io.Writer, r Report) {
	id := r.ReviewID
	if id == "" {
		id = "unnamed review"
	}

	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, "REVIEW QUALITY REPORT: %s (%d★)\n", id, r.Rating)
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, "Grade: %s\n", r.Grade)
	fmt.Fprintf(w, "Overall: %.2f\n", r.Overall)
	if r.Tone != "" {
		fmt.Fprintf(w, "Tone: %s %s\n", r.ToneEmoji(), r.Tone)
	}
	for _, m := range Metrics {
		marker := ""
		for _, fb := range r.Fallbacks {
			if fb == m {
				marker = " (fallback)"
			}
		}
		fmt.Fprintf(w, "  - %-13s %.2f%s\n", m+":", r.Scores.Get(m), marker)
	}

	if len(r.Issues) > 0 {
		fmt.Fprintln(w, "\n⚠️  ISSUES:")
		for _, issue := range r.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	} else {
		fmt.Fprintln(w, "\n✅ No issues detected")
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "\n💡 RECOMMENDATIONS:")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}

	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w)
}

// PrintBatchSummary writes a formatted summary of a scored batch
func PrintBatchSummary(w io.Writer, s BatchSummary) {
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, "REVIEW QUALITY BATCH SUMMARY (%d reviews)\n", s.Count)
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, "Overall: %.2f ± %.2f\n", s.MeanOverall, s.StdDevOverall)
	for _, m := range Metrics {
		fmt.Fprintf(w, "  - %-13s %.2f\n", m+":", s.MetricMeans[m])
	}

	fmt.Fprintln(w, "\nGrade Distribution:")
	for _, grade := range []string{"A", "B", "C", "D"} {
		if count := s.GradeCounts[grade]; count > 0 {
			pct := float64(count) * 100.0 / float64(s.Count)
			fmt.Fprintf(w, "  %s: %d reviews (%.0f%%)\n", grade, count, pct)
		}
	}
	fmt.Fprintln(w, "\nRating Distribution:")
	for rating := core.MaxRating; rating >= core.MinRating; rating-- {
		if count := s.RatingCounts[rating]; count > 0 {
			fmt.Fprintf(w, "  %d★: %d\n", rating, count)
		}
	}

	if len(s.TopIssues) > 0 {
		fmt.Fprintln(w, "\nTop Issues:")
		for _, mc := range s.TopIssues {
			fmt.Fprintf(w, "  %3d × %s\n", mc.Count, mc.Message)
		}
	}
	if len(s.TopRecommendations) > 0 {
		fmt.Fprintln(w, "\nTop Recommendations:")
		for _, mc := range s.TopRecommendations {
			fmt.Fprintf(w, "  %3d × %s\n", mc.Count, mc.Message)
		}
	}

	fmt.Fprintf(w, "\n%s\n", s.Recommendation)
	fmt.Fprintln(w, "============================================================")
}
