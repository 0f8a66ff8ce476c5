package compose

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewsynth/internal/core"
	"reviewsynth/internal/ledger"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/textclean"
)

func registry(t *testing.T) *locale.Registry {
	t.Helper()
	reg, err := locale.Load("")
	require.NoError(t, err)
	return reg
}

func newEngine(opts Options) *Engine {
	tracker := ledger.NewTracker(context.Background(), nil, ledger.Options{EvictThreshold: 0.3, EvictFraction: 0.5}, nil)
	return New(tracker, opts)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

func onlySlots(slots ...Slot) Options {
	opts := DefaultOptions()
	opts.EmptyBodyProbability = 0
	opts.ShortFormProbability = 0
	opts.InformalProbability = 0
	opts.ClosingProbability = 0
	opts.SlotProbabilities = map[Slot]float64{}
	for _, s := range slots {
		opts.SlotProbabilities[s] = 1
	}
	opts.Patterns = [][]Slot{slots}
	return opts
}

func TestPatternCatalog(t *testing.T) {
	assert.GreaterOrEqual(t, len(Patterns), 12)
	for _, p := range Patterns {
		assert.GreaterOrEqual(t, len(p), 3)
		assert.LessOrEqual(t, len(p), 4)
	}
}

func TestComposeNeverMixesLocales(t *testing.T) {
	reg := registry(t)
	product := core.Product{Title: "Linen dress", Description: "Navy linen dress with pockets"}

	for _, code := range reg.Codes() {
		pack, _ := reg.Get(code)
		var foreign []string
		for _, other := range reg.Codes() {
			if other == code {
				continue
			}
			o, _ := reg.Get(other)
			for _, phrase := range o.AllPhrases() {
				if utf8.RuneCountInString(phrase) >= 15 {
					foreign = append(foreign, textclean.Normalize(phrase))
				}
			}
		}

		engine := newEngine(DefaultOptions())
		rng := newRand(uint64(len(code)))
		for i := 0; i < 150; i++ {
			res, err := engine.Compose(context.Background(), rng, Request{Pack: pack, Product: product, Rating: 1 + i%5})
			require.NoError(t, err)
			text := textclean.Normalize(res.Title + " " + res.Body)
			for _, phrase := range foreign {
				if strings.Contains(text, phrase) {
					t.Fatalf("%s review contains foreign phrase %q: %s", code, phrase, res.Body)
				}
			}
		}
	}
}

func TestComposeRespectsRatingTier(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("en")

	phrasesOf := func(tier core.Tier) []string {
		var out []string
		for _, slot := range []string{locale.SlotOpening, locale.SlotQuality, locale.SlotFit} {
			for _, p := range pack.Rated[slot][tier] {
				out = append(out, textclean.Normalize(p))
			}
		}
		return out
	}

	cases := map[int][]string{
		5: append(phrasesOf(core.TierNegative), phrasesOf(core.TierNeutral)...),
		1: append(phrasesOf(core.TierPositive), phrasesOf(core.TierNeutral)...),
		3: append(phrasesOf(core.TierPositive), phrasesOf(core.TierNegative)...),
	}
	for rating, forbidden := range cases {
		engine := newEngine(onlySlots(SlotOpening, SlotQuality, SlotFit))
		rng := newRand(uint64(rating))
		for i := 0; i < 60; i++ {
			res, err := engine.Compose(context.Background(), rng, Request{Pack: pack, Rating: rating})
			require.NoError(t, err)
			body := textclean.Normalize(res.Body)
			for _, phrase := range forbidden {
				assert.NotContains(t, body, phrase, "rating %d", rating)
			}
		}
	}
}

func TestComposeEmptyBody(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("en")
	opts := DefaultOptions()
	opts.EmptyBodyProbability = 1

	res, err := newEngine(opts).Compose(context.Background(), newRand(1), Request{Pack: pack, Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, Result{Form: FormRatingOnly}, res)
}

func TestComposeShortForm(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("de")
	opts := onlySlots(SlotOpening)
	opts.ShortFormProbability = 1
	opts.InformalProbability = 1
	opts.SlangProbability = 1
	opts.ClosingProbability = 1

	res, err := newEngine(opts).Compose(context.Background(), newRand(2), Request{Pack: pack, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, FormShort, res.Form)
	assert.Contains(t, pack.Rated[locale.SlotShort][core.TierPositive], strings.TrimSuffix(res.Body, "."))
	assert.Contains(t, pack.Rated[locale.SlotTitle][core.TierPositive], res.Title)
}

func TestComposeFallbackUsesProductTitle(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("en")
	opts := onlySlots()
	opts.Patterns = [][]Slot{{SlotOpening, SlotQuality, SlotFit}}

	res, err := newEngine(opts).Compose(context.Background(), newRand(3), Request{
		Pack:    pack,
		Product: core.Product{Title: "<b>Linen Shirt</b>"},
		Rating:  4,
	})
	require.NoError(t, err)
	assert.Equal(t, FormFallback, res.Form)
	assert.Equal(t, "Ordered Linen Shirt and it is exactly as described.", res.Body)

	res, err = newEngine(opts).Compose(context.Background(), newRand(3), Request{Pack: pack, Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, "Ordered this product and it is exactly as described.", res.Body)
}

func TestComposeProductSlotRendersInsight(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("en")
	insights := core.InsightSet{core.FacetMaterial: {"linen"}}

	res, err := newEngine(onlySlots(SlotProduct)).Compose(context.Background(), newRand(4), Request{
		Pack: pack, Insights: insights, Rating: 5,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Body, "linen")
	assert.NotContains(t, res.Body, "{tag}")
}

func TestComposeProductSlotWithoutInsights(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("fr")

	res, err := newEngine(onlySlots(SlotProduct)).Compose(context.Background(), newRand(5), Request{Pack: pack, Rating: 3})
	require.NoError(t, err)
	assert.Contains(t, pack.Phrases[locale.CategoryGeneric], strings.TrimSuffix(res.Body, "."))
}

func TestComposeInformal(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("en")
	opts := onlySlots(SlotStyle)
	opts.InformalProbability = 1
	opts.SlangProbability = 0

	for seed := uint64(0); seed < 20; seed++ {
		res, err := newEngine(opts).Compose(context.Background(), newRand(seed), Request{Pack: pack, Rating: 5})
		require.NoError(t, err)
		first, _ := utf8.DecodeRuneInString(res.Body)
		assert.True(t, unicode.IsLower(first), res.Body)
		trimmed := strings.TrimRight(res.Body, "!")
		bangs := len(res.Body) - len(trimmed)
		assert.GreaterOrEqual(t, bangs, 1)
		assert.LessOrEqual(t, bangs, 4)
		assert.False(t, strings.HasSuffix(trimmed, "."))
	}
}

func TestComposeClosing(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("en")
	opts := onlySlots(SlotOpening, SlotQuality, SlotFit, SlotUsage)
	opts.ClosingProbability = 1
	opts.ClosingMinLength = 10

	res, err := newEngine(opts).Compose(context.Background(), newRand(6), Request{Pack: pack, Rating: 2})
	require.NoError(t, err)

	found := false
	for _, closing := range pack.Rated[locale.SlotClosing][core.TierNegative] {
		if strings.HasSuffix(res.Body, closing+".") {
			found = true
		}
	}
	assert.True(t, found, res.Body)
}

func TestComposeLowercaseAfterComma(t *testing.T) {
	assert.True(t, startsWithCapitalisedWord("The fit"))
	assert.False(t, startsWithCapitalisedWord("I am"))
	assert.False(t, startsWithCapitalisedWord("UK sizing"))
	assert.False(t, startsWithCapitalisedWord("x"))
}

func TestComposeIsDeterministic(t *testing.T) {
	reg := registry(t)
	pack, _ := reg.Get("es")
	req := Request{Pack: pack, Product: core.Product{Title: "Camisa de lino"}, Rating: 4,
		Insights: core.InsightSet{core.FacetMaterial: {"lino"}}}

	run := func() []Result {
		engine := newEngine(DefaultOptions())
		rng := newRand(77)
		var out []Result
		for i := 0; i < 30; i++ {
			res, err := engine.Compose(context.Background(), rng, req)
			require.NoError(t, err)
			out = append(out, res)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestComposeMissingBankIsConfigurationError(t *testing.T) {
	pack := &locale.Pack{Code: "zz"}
	_, err := newEngine(onlySlots(SlotOpening)).Compose(context.Background(), newRand(1), Request{Pack: pack, Rating: 5})
	assert.True(t, errors.Is(err, core.ErrConfiguration))

	_, err = newEngine(DefaultOptions()).Compose(context.Background(), newRand(1), Request{Rating: 5})
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestTerminate(t *testing.T) {
	assert.Equal(t, "Great.", terminate("Great"))
	assert.Equal(t, "Great!", terminate("Great!"))
	assert.Equal(t, "Hmm…", terminate("Hmm…"))
	assert.Equal(t, "", terminate("  "))
}
