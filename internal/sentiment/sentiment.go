// Package sentiment scores the polarity of review text with a per-locale
// weighted lexicon.
package sentiment

import (
	"fmt"

	"reviewsynth/internal/core"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

// SentimentScore represents the sentiment analysis result
type SentimentScore struct {
	Overall    float64 `json:"overall"`    // Overall sentiment score (-1.0 to 1.0)
	Positive   float64 `json:"positive"`   // Positive signal density, capped at 1.0
	Negative   float64 `json:"negative"`   // Negative signal density, capped at 1.0
	Confidence float64 `json:"confidence"` // Overall confidence in the analysis (0.0 to 1.0)
	Hits       int     `json:"hits"`       // Number of lexicon words matched
}

// SentimentClassification represents the discrete sentiment category
type SentimentClassification string

const (
	SentimentVeryPositive SentimentClassification = "very_positive"
	SentimentPositive     SentimentClassification = "positive"
	SentimentNeutral      SentimentClassification = "neutral"
	SentimentNegative     SentimentClassification = "negative"
	SentimentVeryNegative SentimentClassification = "very_negative"
	SentimentMixed        SentimentClassification = "mixed"
)

// SentimentEmoji maps sentiment classifications to emojis
var SentimentEmoji = map[SentimentClassification]string{
	SentimentVeryPositive: "🚀",
	SentimentPositive:     "😊",
	SentimentNeutral:      "😐",
	SentimentNegative:     "😞",
	SentimentVeryNegative: "😱",
	SentimentMixed:        "🤔",
}

// Analyzer computes the polarity of text written in pack's language. It
// returns core.ErrAnalysisUnavailable when it cannot judge the text.
type Analyzer interface {
	Analyze(text string, pack *locale.Pack) (SentimentScore, error)
}

// negationWindow is how many preceding tokens a negation word reaches.
const negationWindow = 2

// LexiconAnalyzer is the rule-based Analyzer backed by the locale lexicon.
type LexiconAnalyzer struct{}

// NewLexiconAnalyzer creates a new lexicon analyzer
func NewLexiconAnalyzer() *LexiconAnalyzer {
	return &LexiconAnalyzer{}
}

// Analyze performs rule-based sentiment analysis. Weights are summed per
// polarity, normalised per 100 words and folded into
// (pos - neg) / (pos + neg + 1). A negation within two tokens before a
// sentiment word flips its polarity.
func (sa *LexiconAnalyzer) Analyze(text string, pack *locale.Pack) (SentimentScore, error) {
	if pack == nil {
		return SentimentScore{}, fmt.Errorf("sentiment: no locale pack: %w", core.ErrAnalysisUnavailable)
	}
	words := textclean.Tokens(text)
	if len(words) == 0 {
		return SentimentScore{}, fmt.Errorf("sentiment: empty text: %w", core.ErrAnalysisUnavailable)
	}

	negations := make(map[string]bool, len(pack.Lexicon.Negations))
	for _, n := range pack.Lexicon.Negations {
		negations[n] = true
	}

	var positiveScore, negativeScore float64
	hits := 0
	for i, word := range words {
		pos, isPos := pack.Lexicon.Positive[word]
		neg, isNeg := pack.Lexicon.Negative[word]
		if !isPos && !isNeg {
			continue
		}
		hits++
		negated := false
		for j := i - 1; j >= 0 && j >= i-negationWindow; j-- {
			if negations[words[j]] {
				negated = true
				break
			}
		}
		if negated {
			pos, neg = neg, pos
		}
		positiveScore += pos
		negativeScore += neg
	}

	total := float64(len(words))
	positiveScore = positiveScore / total * 100
	negativeScore = negativeScore / total * 100

	// Calculate overall sentiment (-1.0 to 1.0)
	overall := (positiveScore - negativeScore) / (positiveScore + negativeScore + 1.0)

	confidence := clamp((positiveScore+negativeScore)/20.0, 0.3, 1.0)
	if hits == 0 {
		confidence = 0.1
	}

	return SentimentScore{
		Overall:    overall,
		Positive:   clamp(positiveScore/10.0, 0, 1),
		Negative:   clamp(negativeScore/10.0, 0, 1),
		Confidence: confidence,
		Hits:       hits,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Classify converts a sentiment score to a classification
func Classify(score SentimentScore) SentimentClassification {
	overall := score.Overall

	// Check for mixed sentiment (strong positive and negative signals)
	if score.Positive > 0.3 && score.Negative > 0.3 {
		return SentimentMixed
	}

	switch {
	case overall >= 0.7:
		return SentimentVeryPositive
	case overall >= 0.2:
		return SentimentPositive
	case overall <= -0.7:
		return SentimentVeryNegative
	case overall <= -0.2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Counts returns the number of positive and negative lexicon words in text,
// without weights or negation. It backs the scorer's fallback when an
// Analyzer fails.
func Counts(text string, pack *locale.Pack) (positive, negative int) {
	if pack == nil {
		return 0, 0
	}
	for _, word := range textclean.Tokens(text) {
		if _, ok := pack.Lexicon.Positive[word]; ok {
			positive++
		}
		if _, ok := pack.Lexicon.Negative[word]; ok {
			negative++
		}
	}
	return positive, negative
}
