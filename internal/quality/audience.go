package quality

import (
	"sort"

	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

const (
	demographicBase    = 0.5
	demographicStep    = 0.1
	persuasionStep     = 0.15
	criticismBonus     = 0.2
	valueBonus         = 0.15
	criticismMinRating = 4
)

// PersuasionCategories are the persuasive elements commercial value rewards.
var PersuasionCategories = []string{"social_proof", "specific_benefit", "usage_scenario", "comparison", "call_to_action"}

// demographicAlignment rewards every indicator category of persona found in
// text.
func demographicAlignment(text, persona string, pack *locale.Pack) float64 {
	if pack == nil {
		return demographicBase
	}
	categories := pack.Personas[persona]
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	normalized := textclean.Normalize(text)
	score := demographicBase
	for _, name := range names {
		if textclean.AnyTerm(normalized, categories[name]) {
			score += demographicStep
		}
	}
	return clamp01(score)
}

// commercialValue rewards persuasive elements, honest mild criticism in a
// positive review and any mention of price or value.
func commercialValue(text string, rating int, pack *locale.Pack) float64 {
	if pack == nil {
		return 0
	}
	normalized := textclean.Normalize(text)

	score := 0.0
	for _, category := range PersuasionCategories {
		if textclean.AnyTerm(normalized, pack.Persuasion[category]) {
			score += persuasionStep
		}
	}
	if rating >= criticismMinRating && textclean.AnyTerm(normalized, pack.Lexicon.Criticism) {
		score += criticismBonus
	}
	if textclean.AnyTerm(normalized, pack.Lexicon.Value) {
		score += valueBonus
	}
	return clamp01(score)
}
