package core

import (
	"sort"
	"time"
)

// Product represents the catalog record a review is written for.
type Product struct {
	ID          string `json:"id" yaml:"id"`                   // Unique identifier for the product
	Title       string `json:"title" yaml:"title"`             // Display title
	Description string `json:"description" yaml:"description"` // Raw description, HTML permitted
}

// HasText reports whether the product carries any usable text.
func (p Product) HasText() bool {
	return p.Title != "" || p.Description != ""
}

// Facet names the dimension an insight tag was extracted for.
type Facet string

const (
	FacetMaterial Facet = "material"
	FacetStyle    Facet = "style"
	FacetFeature  Facet = "feature"
	FacetOccasion Facet = "occasion"
	FacetColor    Facet = "color"
	FacetFit      Facet = "fit"
)

// Facets lists every facet in extraction order.
var Facets = []Facet{FacetMaterial, FacetStyle, FacetFeature, FacetOccasion, FacetColor, FacetFit}

// InsightSet maps each facet to the sorted tags matched in the product text.
// It is derived on every call and never persisted.
type InsightSet map[Facet][]string

// Empty reports whether no facet matched.
func (s InsightSet) Empty() bool {
	for _, tags := range s {
		if len(tags) > 0 {
			return false
		}
	}
	return true
}

// Populated returns the facets with at least one tag, in Facets order.
func (s InsightSet) Populated() []Facet {
	var out []Facet
	for _, f := range Facets {
		if len(s[f]) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Tags returns every tag across facets, sorted and de-duplicated.
func (s InsightSet) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, tags := range s {
		for _, t := range tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Tier groups ratings that share rating-scoped phrase banks.
type Tier string

const (
	TierPositive Tier = "positive"
	TierNeutral  Tier = "neutral"
	TierNegative Tier = "negative"
)

// TierFor maps a star rating to its phrase-bank tier.
func TierFor(rating int) Tier {
	switch {
	case rating >= 4:
		return TierPositive
	case rating == 3:
		return TierNeutral
	default:
		return TierNegative
	}
}

// ValidRating reports whether rating lies in the supported tier set.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Review is a generated (or imported) product review. Values are never mutated
// after Generate returns them.
type Review struct {
	ID         string    `json:"id"`          // Unique identifier for the review
	ProductID  string    `json:"product_id"`  // Product the review belongs to
	Title      string    `json:"title"`       // Short headline, empty for rating-only reviews
	Body       string    `json:"body"`        // Review text, possibly empty
	Rating     int       `json:"rating"`      // Star rating 1-5
	Locale     string    `json:"locale"`      // Locale code the text was composed in
	Persona    string    `json:"persona"`     // Demographic archetype the text was biased toward
	AuthorName string    `json:"author_name"` // Display name of the reviewer
	Date       time.Time `json:"date"`        // Publication date
	Verified   bool      `json:"verified"`    // Verified-purchase flag
}

// RatingOnly reports whether the review has no body text.
func (r Review) RatingOnly() bool {
	return r.Body == ""
}
