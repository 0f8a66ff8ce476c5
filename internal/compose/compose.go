// Package compose assembles review titles and bodies from locale phrase
// fragments, drawing every fragment through the uniqueness tracker.
package compose

import (
	"context"
	"math/rand/v2"
	"strings"
	"unicode"

	"reviewsynth/internal/core"
	"reviewsynth/internal/ledger"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/selector"
	"reviewsynth/internal/textclean"
)

// Slot is one position in a composition pattern.
type Slot string

const (
	SlotOpening  Slot = "opening"
	SlotQuality  Slot = "quality"
	SlotFit      Slot = "fit"
	SlotProduct  Slot = "product"
	SlotStyle    Slot = "style"
	SlotUsage    Slot = "usage"
	SlotPersonal Slot = "personal"
)

// Form describes the shape of a composed body.
type Form string

const (
	FormRatingOnly Form = "rating_only"
	FormShort      Form = "short"
	FormFull       Form = "full"
	FormFallback   Form = "fallback"
)

// Patterns is the stock catalog of slot sequences.
var Patterns = [][]Slot{
	{SlotOpening, SlotQuality, SlotFit},
	{SlotOpening, SlotProduct, SlotQuality},
	{SlotOpening, SlotStyle, SlotUsage},
	{SlotOpening, SlotFit, SlotPersonal},
	{SlotProduct, SlotQuality, SlotFit},
	{SlotProduct, SlotStyle, SlotPersonal},
	{SlotOpening, SlotQuality, SlotProduct, SlotUsage},
	{SlotOpening, SlotFit, SlotStyle, SlotPersonal},
	{SlotQuality, SlotFit, SlotUsage},
	{SlotPersonal, SlotOpening, SlotProduct},
	{SlotOpening, SlotProduct, SlotFit, SlotUsage},
	{SlotUsage, SlotQuality, SlotPersonal},
	{SlotOpening, SlotStyle, SlotProduct, SlotQuality},
	{SlotProduct, SlotUsage, SlotFit},
}

// exclamationWeights are the odds of appending one to four "!" in informal mode.
var exclamationWeights = []float64{0.5, 0.3, 0.15, 0.05}

// Options tunes composition.
type Options struct {
	EmptyBodyProbability float64
	ShortFormProbability float64
	InformalProbability  float64
	SlangProbability     float64
	ClosingProbability   float64
	ClosingMinLength     int
	SlotProbabilities    map[Slot]float64
	Patterns             [][]Slot
}

// DefaultOptions returns the stock composition tuning.
func DefaultOptions() Options {
	return Options{
		EmptyBodyProbability: 0.05,
		ShortFormProbability: 0.25,
		InformalProbability:  0.18,
		SlangProbability:     0.5,
		ClosingProbability:   0.1,
		ClosingMinLength:     80,
		SlotProbabilities: map[Slot]float64{
			SlotOpening:  0.9,
			SlotQuality:  0.8,
			SlotFit:      0.7,
			SlotProduct:  0.75,
			SlotStyle:    0.6,
			SlotUsage:    0.6,
			SlotPersonal: 0.5,
		},
		Patterns: Patterns,
	}
}

// Request is everything one composition needs.
type Request struct {
	Pack     *locale.Pack
	Product  core.Product
	Insights core.InsightSet
	Rating   int
}

// Result is a composed title and body.
type Result struct {
	Title string
	Body  string
	Form  Form
}

// Engine composes review text. It shares the Tracker's concurrency contract.
type Engine struct {
	tracker *ledger.Tracker
	opts    Options
}

// New creates an Engine drawing fragments through tracker.
func New(tracker *ledger.Tracker, opts Options) *Engine {
	if len(opts.Patterns) == 0 {
		opts.Patterns = Patterns
	}
	return &Engine{tracker: tracker, opts: opts}
}

// Compose builds one title and body in req.Pack's language. Only the pack's
// own banks are consulted, so text never mixes locales.
func (e *Engine) Compose(ctx context.Context, rng *rand.Rand, req Request) (Result, error) {
	pack := req.Pack
	if pack == nil {
		return Result{}, core.NewConfigurationError("locale", "no locale pack")
	}
	tier := core.TierFor(req.Rating)

	if rng.Float64() < e.opts.EmptyBodyProbability {
		return Result{Form: FormRatingOnly}, nil
	}

	title, err := e.drawRated(ctx, rng, pack, locale.SlotTitle, tier)
	if err != nil {
		return Result{}, err
	}

	if rng.Float64() < e.opts.ShortFormProbability {
		body, err := e.drawRated(ctx, rng, pack, locale.SlotShort, tier)
		if err != nil {
			return Result{}, err
		}
		return Result{Title: title, Body: terminate(body), Form: FormShort}, nil
	}

	pattern := e.opts.Patterns[rng.IntN(len(e.opts.Patterns))]
	var fragments []string
	for _, slot := range pattern {
		if rng.Float64() >= e.opts.SlotProbabilities[slot] {
			continue
		}
		fragment, err := e.fragment(ctx, rng, pack, slot, tier, req.Insights)
		if err != nil {
			return Result{}, err
		}
		fragments = append(fragments, fragment)
	}

	form := FormFull
	var body string
	if len(fragments) == 0 {
		form = FormFallback
		body = terminate(fallbackSentence(pack, req.Product))
	} else {
		body, err = e.join(rng, pack, fragments)
		if err != nil {
			return Result{}, err
		}
	}

	body, err = e.finish(ctx, rng, pack, tier, body)
	if err != nil {
		return Result{}, err
	}
	return Result{Title: title, Body: body, Form: form}, nil
}

func (e *Engine) drawRated(ctx context.Context, rng *rand.Rand, pack *locale.Pack, slot string, tier core.Tier) (string, error) {
	bank, err := pack.RatedBank(slot, tier)
	if err != nil {
		return "", err
	}
	return e.tracker.Draw(ctx, rng, bank, pack.Code, locale.RatedCategory(slot, tier))
}

func (e *Engine) drawBank(ctx context.Context, rng *rand.Rand, pack *locale.Pack, category string) (string, error) {
	bank, err := pack.Bank(category)
	if err != nil {
		return "", err
	}
	return e.tracker.Draw(ctx, rng, bank, pack.Code, category)
}

func (e *Engine) fragment(ctx context.Context, rng *rand.Rand, pack *locale.Pack, slot Slot, tier core.Tier, insights core.InsightSet) (string, error) {
	switch slot {
	case SlotOpening, SlotQuality, SlotFit:
		return e.drawRated(ctx, rng, pack, string(slot), tier)
	case SlotStyle, SlotUsage, SlotPersonal:
		return e.drawBank(ctx, rng, pack, string(slot))
	case SlotProduct:
		return e.productFragment(ctx, rng, pack, insights)
	default:
		return "", core.NewConfigurationError(pack.Code+":"+string(slot), "unknown slot")
	}
}

// productFragment renders an insight template for a random populated facet,
// or the generic "matches the description" phrase when nothing was extracted.
func (e *Engine) productFragment(ctx context.Context, rng *rand.Rand, pack *locale.Pack, insights core.InsightSet) (string, error) {
	facets := insights.Populated()
	if len(facets) == 0 {
		return e.drawBank(ctx, rng, pack, locale.CategoryGeneric)
	}

	facet := facets[rng.IntN(len(facets))]
	tags := insights[facet]
	tag := tags[rng.IntN(len(tags))]

	templates, err := pack.Templates(facet)
	if err != nil {
		return "", err
	}
	template, err := e.tracker.Draw(ctx, rng, templates, pack.Code, "insight."+string(facet))
	if err != nil {
		return "", err
	}
	return textclean.UpperFirst(strings.ReplaceAll(template, "{tag}", tag)), nil
}

func (e *Engine) join(rng *rand.Rand, pack *locale.Pack, fragments []string) (string, error) {
	weights := make([]float64, len(pack.Connectives))
	for i, c := range pack.Connectives {
		weights[i] = c.Weight
	}

	var b strings.Builder
	b.WriteString(fragments[0])
	for _, next := range fragments[1:] {
		idx, err := selector.Weighted(rng, pack.Code+":connectives", weights)
		if err != nil {
			return "", err
		}
		conn := pack.Connectives[idx]
		if conn.ContinuesSentence() && pack.LowercaseAfterComma && startsWithCapitalisedWord(next) {
			next = textclean.LowerFirst(next)
		}
		b.WriteString(conn.Text)
		b.WriteString(next)
	}
	return terminate(b.String()), nil
}

// finish applies the informal transform and the optional closing phrase.
func (e *Engine) finish(ctx context.Context, rng *rand.Rand, pack *locale.Pack, tier core.Tier, body string) (string, error) {
	if rng.Float64() < e.opts.InformalProbability {
		idx, err := selector.Weighted(rng, "exclamations", exclamationWeights)
		if err != nil {
			return "", err
		}
		body = textclean.LowerFirst(strings.TrimRight(body, ".!?… "))
		body += strings.Repeat("!", idx+1)
		if rng.Float64() < e.opts.SlangProbability {
			slang, err := e.drawBank(ctx, rng, pack, locale.CategorySlang)
			if err != nil {
				return "", err
			}
			body += slang
		}
	}

	if len([]rune(body)) >= e.opts.ClosingMinLength && rng.Float64() < e.opts.ClosingProbability {
		closing, err := e.drawRated(ctx, rng, pack, locale.SlotClosing, tier)
		if err != nil {
			return "", err
		}
		body = body + " " + terminate(closing)
	}
	return body, nil
}

func fallbackSentence(pack *locale.Pack, product core.Product) string {
	name := strings.TrimSpace(textclean.StripMarkup(product.Title))
	if name == "" {
		name = pack.GenericProduct
	}
	return strings.ReplaceAll(pack.FallbackTitle, "{title}", name)
}

// terminate ends s with a period unless it already ends in terminal
// punctuation.
func terminate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s[len(s)-1:], ".!?") || strings.HasSuffix(s, "…") {
		return s
	}
	return s + "."
}

// startsWithCapitalisedWord is false for single-letter words such as "I" and
// for acronyms, which keep their case after a comma.
func startsWithCapitalisedWord(s string) bool {
	runes := []rune(s)
	if len(runes) < 2 {
		return false
	}
	return unicode.IsUpper(runes[0]) && unicode.IsLower(runes[1])
}
