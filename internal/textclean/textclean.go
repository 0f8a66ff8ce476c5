// Package textclean turns raw product and review text into the normalised
// tokens the extractor and the scorer operate on.
package textclean

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var strictPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// StripMarkup removes HTML from raw and returns plain text with collapsed
// whitespace. Script and style contents are dropped entirely.
func StripMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if !strings.ContainsAny(trimmed, "<&") {
		return normalizeWhitespace(trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return normalizeWhitespace(html.UnescapeString(strictPolicy.Sanitize(trimmed)))
	}
	doc.Find("script, style, noscript, iframe, template").Remove()

	body, err := doc.Find("body").Html()
	if err != nil {
		return normalizeWhitespace(doc.Text())
	}
	return normalizeWhitespace(html.UnescapeString(strictPolicy.Sanitize(body)))
}

// Normalize lowercases s and puts it in Unicode NFC so that composed and
// decomposed diacritics compare equal.
func Normalize(s string) string {
	return norm.NFC.String(strings.ToLower(s))
}

// Clean strips markup and normalises in one step.
func Clean(raw string) string {
	return Normalize(StripMarkup(raw))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Words splits s into word tokens. Apostrophes and hyphens inside a word are
// kept ("don't", "high-waisted"); surrounding punctuation is dropped.
func Words(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r) && r != '\'' && r != '’' && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'’-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Tokens returns the normalised words of s.
func Tokens(s string) []string {
	return Words(Normalize(s))
}

// Sentences splits s on terminal punctuation. Runs of terminators ("!!!",
// "?!", "...") end a single sentence.
func Sentences(s string) []string {
	var out []string
	var current strings.Builder
	flush := func() {
		if sentence := strings.TrimSpace(current.String()); sentence != "" && len(Words(sentence)) > 0 {
			out = append(out, sentence)
		}
		current.Reset()
	}

	runes := []rune(s)
	for i, r := range runes {
		current.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		if i+1 < len(runes) && isTerminator(runes[i+1]) {
			continue
		}
		flush()
	}
	flush()
	return out
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

const vowels = "aeiouyàáâãäåæèéêëìíîïòóôõöøœùúûüÿ"

// Syllables estimates the syllable count of word as its number of vowel
// clusters, never less than one.
func Syllables(word string) int {
	count := 0
	inCluster := false
	for _, r := range strings.ToLower(word) {
		if strings.ContainsRune(vowels, r) {
			if !inCluster {
				count++
			}
			inCluster = true
			continue
		}
		inCluster = false
	}
	if count == 0 {
		return 1
	}
	return count
}

// ContainsTerm reports whether term occurs in text on word boundaries. Both
// arguments are expected to be normalised already; term may span several
// words.
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

// CountTerms returns how many of terms occur in text.
func CountTerms(text string, terms []string) int {
	n := 0
	for _, t := range terms {
		if ContainsTerm(text, t) {
			n++
		}
	}
	return n
}

// AnyTerm reports whether at least one of terms occurs in text.
func AnyTerm(text string, terms []string) bool {
	for _, t := range terms {
		if ContainsTerm(text, t) {
			return true
		}
	}
	return false
}

// HasDigit reports whether s contains a decimal digit.
func HasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LowerFirst lower-cases the first rune of s.
func LowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
