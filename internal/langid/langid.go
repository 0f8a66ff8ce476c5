// Package langid identifies the language a review was written in.
package langid

import (
	"fmt"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"

	"reviewsynth/internal/core"
)

// Detection is one identification result.
type Detection struct {
	Lang       string  // ISO 639-1 code
	Confidence float64 // 0.0 to 1.0
}

// Identifier detects the language of text. Implementations return
// core.ErrAnalysisUnavailable when the text cannot be judged reliably.
type Identifier interface {
	Identify(text string) (Detection, error)
}

// Defaults of the trigram identifier.
const (
	DefaultMinRunes      = 20  // shortest text the detector is trusted with
	DefaultMinConfidence = 0.2 // whatlanggo confidence below which a result is discarded
)

// TrigramIdentifier wraps the whatlanggo trigram detector.
type TrigramIdentifier struct {
	MinRunes      int
	MinConfidence float64
}

// NewTrigramIdentifier returns an identifier that rejects results below
// minConfidence.
func NewTrigramIdentifier(minConfidence float64) *TrigramIdentifier {
	return &TrigramIdentifier{MinRunes: DefaultMinRunes, MinConfidence: minConfidence}
}

func (t *TrigramIdentifier) Identify(text string) (Detection, error) {
	if utf8.RuneCountInString(text) < t.MinRunes {
		return Detection{}, fmt.Errorf("langid: text shorter than %d characters: %w", t.MinRunes, core.ErrAnalysisUnavailable)
	}

	info := whatlanggo.Detect(text)
	code := info.Lang.Iso6391()
	if code == "" {
		return Detection{}, fmt.Errorf("langid: language not recognised: %w", core.ErrAnalysisUnavailable)
	}
	if info.Confidence < t.MinConfidence {
		return Detection{}, fmt.Errorf("langid: confidence %.2f below %.2f: %w", info.Confidence, t.MinConfidence, core.ErrAnalysisUnavailable)
	}
	return Detection{Lang: code, Confidence: info.Confidence}, nil
}
