package quality

import (
	"unicode/utf8"

	"reviewsynth/internal/core"
	"reviewsynth/internal/insights"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

// TopicCategories are the lexicon topics content depth rewards.
var TopicCategories = []string{"quality", "appearance", "fit", "value", "experience"}

const (
	topicWeight  = 0.4
	detailBonus  = 0.2
	peakMinRunes = 50
	peakMaxRunes = 300
)

// lengthTier rewards bodies of 50 to 300 characters most.
func lengthTier(runes int) float64 {
	switch {
	case runes < minBodyRunes:
		return 0.1
	case runes < peakMinRunes:
		return 0.25
	case runes <= peakMaxRunes:
		return 0.4
	case runes <= maxBodyRunes:
		return 0.3
	default:
		return 0.2
	}
}

// contentDepth combines the length tier, the share of topic categories the
// body touches and a bonus for specific detail: a number or measurement, or a
// mention of something extracted from the product.
func contentDepth(body string, product *core.Product, pack *locale.Pack) float64 {
	plain := textclean.StripMarkup(body)
	if plain == "" {
		return 0
	}
	score := lengthTier(utf8.RuneCountInString(plain))

	if pack != nil {
		text := textclean.Normalize(plain)
		matched := 0
		for _, topic := range TopicCategories {
			if textclean.AnyTerm(text, pack.Lexicon.Topics[topic]) {
				matched++
			}
		}
		score += topicWeight * float64(matched) / float64(len(TopicCategories))
	}

	detailed := textclean.HasDigit(plain)
	if !detailed && product != nil && pack != nil {
		detailed = insights.Mentions(plain, insights.Extract(*product, pack), pack)
	}
	if detailed {
		score += detailBonus
	}
	return clamp01(score)
}
