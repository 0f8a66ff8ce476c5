package quality

import (
	"math"

	"reviewsynth/internal/locale"
	"reviewsynth/internal/sentiment"
	"reviewsynth/internal/textclean"
)

// Interval is an inclusive polarity range.
type Interval struct {
	Low  float64
	High float64
}

// Distance returns how far v lies outside the interval, zero when inside.
func (iv Interval) Distance(v float64) float64 {
	switch {
	case v < iv.Low:
		return iv.Low - v
	case v > iv.High:
		return v - iv.High
	}
	return 0
}

// PolarityIntervals maps each star rating to the polarity a review with that
// rating is expected to carry.
var PolarityIntervals = map[int]Interval{
	5: {0.6, 1.0},
	4: {0.2, 0.9},
	3: {-0.3, 0.4},
	2: {-0.8, 0.0},
	1: {-1.0, -0.4},
}

// polarityFit scores how well polarity suits rating.
func polarityFit(polarity float64, rating int) float64 {
	iv, ok := PolarityIntervals[rating]
	if !ok {
		return 0.5
	}
	return math.Max(0, 1-2*iv.Distance(polarity))
}

// sentimentFit analyses text and compares its polarity against rating. The
// analyser's classification is returned as tone. When the analyser fails,
// positive and negative keyword counts stand in and tone is empty.
func sentimentFit(analyzer sentiment.Analyzer, text string, rating int, pack *locale.Pack) (score float64, tone sentiment.SentimentClassification, fallback bool) {
	if analyzer != nil {
		result, err := analyzer.Analyze(text, pack)
		if err == nil {
			return polarityFit(result.Overall, rating), sentiment.Classify(result), false
		}
	}
	return keywordFit(text, rating, pack), "", true
}

// keywordFit compares keyword counts against the rating tier.
func keywordFit(text string, rating int, pack *locale.Pack) float64 {
	if len(textclean.Words(text)) == 0 {
		return 0.5
	}
	pos, neg := sentiment.Counts(text, pack)
	switch {
	case rating >= 4:
		return dominance(pos, neg)
	case rating == 3:
		if diff := pos - neg; diff >= -1 && diff <= 1 {
			return 0.9
		}
		return 0.5
	default:
		return dominance(neg, pos)
	}
}

// dominance scores how clearly expected outweighs other.
func dominance(expected, other int) float64 {
	switch {
	case expected > other:
		return 0.9
	case expected == other:
		return 0.6
	default:
		return 0.3
	}
}
