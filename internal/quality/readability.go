package quality

import (
	"reviewsynth/internal/textclean"
)

// Flesch reading-ease coefficients.
const (
	fleschBase     = 206.835
	fleschSentence = 1.015
	fleschSyllable = 84.6
)

// Flesch computes the reading-ease score of text. Syllables are estimated by
// vowel clusters, so the value is approximate for every language.
func Flesch(text string) float64 {
	words := textclean.Words(text)
	if len(words) == 0 {
		return 0
	}
	sentences := len(textclean.Sentences(text))
	if sentences == 0 {
		sentences = 1
	}
	syllables := 0
	for _, w := range words {
		syllables += textclean.Syllables(w)
	}
	wps := float64(len(words)) / float64(sentences)
	spw := float64(syllables) / float64(len(words))
	return fleschBase - fleschSentence*wps - fleschSyllable*spw
}

// readability buckets the Flesch score of body.
func readability(body string) float64 {
	plain := textclean.StripMarkup(body)
	words := textclean.Words(plain)
	switch {
	case len(words) == 0:
		return 0.1
	case len(words) < 3:
		return 0.2
	}

	ease := Flesch(plain)
	switch {
	case ease >= 60 && ease <= 80:
		return 1.0
	case ease >= 40 && ease <= 90:
		return 0.8
	default:
		return 0.5
	}
}
