package quality

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

// Authenticity penalties.
const (
	missingMarkerPenalty = 0.10
	capsRunPenalty       = 0.15
	punctuationPenalty   = 0.10
	repetitionPenalty    = 0.15
	placeholderPenalty   = 0.30
	lengthPenalty        = 0.10
	sentencePenalty      = 0.10

	minBodyRunes         = 20
	maxBodyRunes         = 500
	minWordsPerSentence  = 3.0
	maxWordsPerSentence  = 30.0
	repeatedNGramSize    = 3
	capsWordMinLetters   = 5
	capsRunMinWords      = 2
	repeatedWordRunLimit = 3
)

var (
	excessivePunctuation = regexp.MustCompile(`[!?]{3,}|\.{4,}`)
	placeholderPattern   = regexp.MustCompile(`(?i)lorem ipsum|\{[a-z_]+\}|\[(?:name|product|brand|insert[^\]]*)\]|\bx{3,}\b|\btbd\b`)
)

// AuthenticityFlags lists what the authenticity check found.
type AuthenticityFlags struct {
	MissingMarkers []string
	CapsRun        bool
	Punctuation    bool
	Repetition     bool
	Placeholder    bool
	LengthOutside  bool
	SentenceLength bool
}

// messages turns red flags into report text. A placeholder is an issue; the
// stylistic flags only produce recommendations.
func (f AuthenticityFlags) messages() (issues, recommendations []string) {
	if f.Placeholder {
		issues = append(issues, "Review contains placeholder text")
	}
	if f.CapsRun {
		recommendations = append(recommendations, "Avoid writing whole words in capitals")
	}
	if f.Punctuation {
		recommendations = append(recommendations, "Tone down runs of exclamation or question marks")
	}
	if f.Repetition {
		recommendations = append(recommendations, "Remove repeated words and phrases")
	}
	return issues, recommendations
}

// authenticity starts at 1.0 and deducts for every missing marker category
// and every red flag found in body.
func authenticity(body string, pack *locale.Pack) (float64, AuthenticityFlags) {
	var flags AuthenticityFlags
	plain := textclean.StripMarkup(body)
	text := textclean.Normalize(plain)

	score := 1.0
	if pack != nil {
		markers := []struct {
			name  string
			terms []string
		}{
			{"personal", pack.Lexicon.Personal},
			{"experience", pack.Lexicon.Experience},
			{"emotion", pack.Lexicon.Emotion},
		}
		for _, m := range markers {
			if !textclean.AnyTerm(text, m.terms) {
				flags.MissingMarkers = append(flags.MissingMarkers, m.name)
				score -= missingMarkerPenalty
			}
		}
	} else {
		flags.MissingMarkers = []string{"personal", "experience", "emotion"}
		score -= 3 * missingMarkerPenalty
	}

	if hasCapsRun(plain) {
		flags.CapsRun = true
		score -= capsRunPenalty
	}
	if excessivePunctuation.MatchString(plain) {
		flags.Punctuation = true
		score -= punctuationPenalty
	}
	if hasRepeatedRun(textclean.Words(text)) {
		flags.Repetition = true
		score -= repetitionPenalty
	}
	if placeholderPattern.MatchString(body) {
		flags.Placeholder = true
		score -= placeholderPenalty
	}

	if n := utf8.RuneCountInString(plain); n < minBodyRunes || n > maxBodyRunes {
		flags.LengthOutside = true
		score -= lengthPenalty
	}
	if avg := wordsPerSentence(plain); avg < minWordsPerSentence || avg > maxWordsPerSentence {
		flags.SentenceLength = true
		score -= sentencePenalty
	}

	return clamp01(score), flags
}

// hasCapsRun reports shouting: one all-caps word of five letters or more, or
// two all-caps words in a row.
func hasCapsRun(text string) bool {
	run := 0
	for _, w := range textclean.Words(text) {
		letters := 0
		upper := true
		for _, r := range w {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			if !unicode.IsUpper(r) {
				upper = false
			}
		}
		if !upper || letters < 2 {
			run = 0
			continue
		}
		if letters >= capsWordMinLetters {
			return true
		}
		run++
		if run >= capsRunMinWords {
			return true
		}
	}
	return false
}

// hasRepeatedRun reports a word said three times in a row or a word trigram
// that occurs twice.
func hasRepeatedRun(words []string) bool {
	run := 1
	for i := 1; i < len(words); i++ {
		if words[i] == words[i-1] {
			run++
			if run >= repeatedWordRunLimit {
				return true
			}
		} else {
			run = 1
		}
	}

	seen := make(map[string]bool)
	for i := 0; i+repeatedNGramSize <= len(words); i++ {
		gram := strings.Join(words[i:i+repeatedNGramSize], " ")
		if seen[gram] {
			return true
		}
		seen[gram] = true
	}
	return false
}

// wordsPerSentence returns the mean word count of the sentences in text, or
// zero when there are none.
func wordsPerSentence(text string) float64 {
	sentences := textclean.Sentences(text)
	if len(sentences) == 0 {
		return 0
	}
	words := 0
	for _, s := range sentences {
		words += len(textclean.Words(s))
	}
	return float64(words) / float64(len(sentences))
}
