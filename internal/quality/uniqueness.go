package quality

import (
	"fmt"
	"math"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"gonum.org/v1/gonum/floats"

	"reviewsynth/internal/core"
	"reviewsynth/internal/textclean"
)

// Default corpus windows.
const (
	DefaultHistoryWindow = 100
	DefaultJaccardWindow = 50
	DefaultCacheSize     = 1024
)

// Vectorizer measures how close a document is to a corpus. It returns
// core.ErrAnalysisUnavailable when the document cannot be vectorised.
type Vectorizer interface {
	MaxSimilarity(doc string, corpus []string) (float64, error)
}

// TFIDFVectorizer compares documents as TF-IDF weighted term vectors by
// cosine similarity. Term counts of corpus bodies are cached, since the same
// history is compared against over and over in a batch.
type TFIDFVectorizer struct {
	cache *lru.Cache[string, map[string]float64]
}

// NewTFIDFVectorizer creates a vectoriser caching the term counts of up to
// cacheSize documents.
func NewTFIDFVectorizer(cacheSize int) (*TFIDFVectorizer, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, map[string]float64](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create term cache: %w", err)
	}
	return &TFIDFVectorizer{cache: cache}, nil
}

func (v *TFIDFVectorizer) termCounts(doc string) map[string]float64 {
	if counts, ok := v.cache.Get(doc); ok {
		return counts
	}
	counts := make(map[string]float64)
	for _, t := range textclean.Tokens(textclean.StripMarkup(doc)) {
		counts[t]++
	}
	v.cache.Add(doc, counts)
	return counts
}

// MaxSimilarity returns the highest cosine similarity between doc and any
// corpus entry. Inverse document frequencies are computed over the corpus
// plus doc.
func (v *TFIDFVectorizer) MaxSimilarity(doc string, corpus []string) (float64, error) {
	target := v.termCounts(doc)
	if len(target) == 0 {
		return 0, fmt.Errorf("tfidf: document has no terms: %w", core.ErrAnalysisUnavailable)
	}

	docs := make([]map[string]float64, 0, len(corpus)+1)
	docs = append(docs, target)
	for _, c := range corpus {
		docs = append(docs, v.termCounts(c))
	}

	df := make(map[string]int)
	for _, counts := range docs {
		for term := range counts {
			df[term]++
		}
	}
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, term := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vector := func(counts map[string]float64) []float64 {
		vec := make([]float64, len(vocab))
		for i, term := range vocab {
			vec[i] = counts[term] * idf[i]
		}
		return vec
	}

	targetVec := vector(target)
	targetNorm := floats.Norm(targetVec, 2)
	best := 0.0
	for _, counts := range docs[1:] {
		if len(counts) == 0 {
			continue
		}
		vec := vector(counts)
		norm := floats.Norm(vec, 2)
		if norm == 0 {
			continue
		}
		if sim := floats.Dot(targetVec, vec) / (targetNorm * norm); sim > best {
			best = sim
		}
	}
	return math.Min(best, 1), nil
}

// Jaccard returns the highest Jaccard similarity of doc's token set against
// any corpus entry.
func Jaccard(doc string, corpus []string) float64 {
	target := tokenSet(doc)
	if len(target) == 0 {
		return 0
	}
	best := 0.0
	for _, c := range corpus {
		other := tokenSet(c)
		if len(other) == 0 {
			continue
		}
		shared := 0
		for t := range target {
			if other[t] {
				shared++
			}
		}
		union := len(target) + len(other) - shared
		if sim := float64(shared) / float64(union); sim > best {
			best = sim
		}
	}
	return best
}

func tokenSet(doc string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range textclean.Tokens(textclean.StripMarkup(doc)) {
		set[t] = true
	}
	return set
}

// lastN returns the final n entries of corpus.
func lastN(corpus []string, n int) []string {
	if n > 0 && len(corpus) > n {
		return corpus[len(corpus)-n:]
	}
	return corpus
}

// uniqueness is one minus the highest similarity of body to the recent
// corpus. The vectoriser sees the last historyWindow entries; when it is
// unavailable Jaccard over the last jaccardWindow entries is used instead.
func uniqueness(v Vectorizer, body string, corpus []string, historyWindow, jaccardWindow int) (score float64, fallback bool) {
	if len(corpus) == 0 {
		return 1.0, false
	}
	if v != nil {
		sim, err := v.MaxSimilarity(body, lastN(corpus, historyWindow))
		if err == nil {
			return clamp01(1 - sim), false
		}
	}
	return clamp01(1 - Jaccard(body, lastN(corpus, jaccardWindow))), true
}
