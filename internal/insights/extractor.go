// Package insights tags product text with the facets a review can mention.
package insights

import (
	"sort"

	"reviewsynth/internal/core"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

// Extract matches the product title and description against the pack's
// keyword dictionaries. Markup is stripped and text normalised first. The
// result depends only on its inputs; a product without text yields an empty
// set.
func Extract(product core.Product, pack *locale.Pack) core.InsightSet {
	set := make(core.InsightSet)
	if pack == nil || !product.HasText() {
		return set
	}

	text := textclean.Clean(product.Title + " " + product.Description)
	if text == "" {
		return set
	}

	for _, facet := range core.Facets {
		var tags []string
		for tag, terms := range pack.Keywords[facet] {
			if textclean.AnyTerm(text, terms) {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			sort.Strings(tags)
			set[facet] = tags
		}
	}
	return set
}

// Mentions reports whether body refers to any tag or keyword of set, used as
// the "product insight" detail signal when scoring depth.
func Mentions(body string, set core.InsightSet, pack *locale.Pack) bool {
	if len(set) == 0 {
		return false
	}
	text := textclean.Normalize(body)
	for facet, tags := range set {
		for _, tag := range tags {
			if textclean.ContainsTerm(text, textclean.Normalize(tag)) {
				return true
			}
			if pack != nil && textclean.AnyTerm(text, pack.Keywords[facet][tag]) {
				return true
			}
		}
	}
	return false
}
