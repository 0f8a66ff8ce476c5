package quality

import (
	"strings"

	"golang.org/x/text/language"

	"reviewsynth/internal/langid"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

// languageConsistency checks that text is written in the review's locale.
// The identifier decides when it can; otherwise the diacritic and stop-word
// heuristic does, and fallback is reported. Without a pack the identifier can
// still confirm the locale's base language, but the heuristic has nothing to
// count and scores 0.5.
func languageConsistency(id langid.Identifier, text, code string, pack *locale.Pack) (score float64, fallback bool) {
	if id != nil {
		detection, err := id.Identify(text)
		if err == nil {
			switch {
			case pack != nil && pack.SameLanguage(detection.Lang):
				return 1.0, false
			case pack == nil && sameBase(detection.Lang, code):
				return 1.0, false
			case pack != nil && pack.IsAdjacent(detection.Lang):
				return 0.7, false
			default:
				return 0.3, false
			}
		}
	}

	if pack == nil {
		return 0.5, true
	}
	switch hits := markerHits(textclean.Normalize(text), pack); {
	case hits >= 3:
		return 1.0, true
	case hits >= 1:
		return 0.7, true
	default:
		return 0.3, true
	}
}

func sameBase(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	baseA, confA := language.Make(a).Base()
	baseB, _ := language.Make(b).Base()
	return confA != language.No && baseA == baseB
}

// markerHits counts the distinct locale stop words and locale-specific
// diacritics present in normalised text.
func markerHits(text string, pack *locale.Pack) int {
	hits := textclean.CountTerms(text, pack.Lexicon.StopWords)
	seen := make(map[rune]bool)
	for _, r := range pack.Lexicon.Diacritics {
		if !seen[r] && strings.ContainsRune(text, r) {
			hits++
		}
		seen[r] = true
	}
	return hits
}
