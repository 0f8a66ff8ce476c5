// Package generator wires selection, insight extraction, composition and
// metadata into a single Generate call.
package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"reviewsynth/internal/compose"
	"reviewsynth/internal/config"
	"reviewsynth/internal/core"
	"reviewsynth/internal/insights"
	"reviewsynth/internal/ledger"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/logger"
	"reviewsynth/internal/metadata"
	"reviewsynth/internal/metrics"
	"reviewsynth/internal/selector"
)

// Options pins any of the three targets. Zero values are drawn from the
// configured weight tables.
type Options struct {
	Locale  string
	Persona string
	Rating  int
}

// Settings groups the tunables of every stage.
type Settings struct {
	Compose  compose.Options
	Metadata metadata.Options
	Locales  map[string]float64
	Personas map[string]float64
}

// SettingsFromConfig maps loaded configuration onto generator settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	composeOpts := compose.Options{
		EmptyBodyProbability: cfg.Generation.EmptyBodyProbability,
		ShortFormProbability: cfg.Generation.ShortFormProbability,
		InformalProbability:  cfg.Generation.InformalProbability,
		SlangProbability:     cfg.Generation.SlangProbability,
		ClosingProbability:   cfg.Generation.ClosingProbability,
		ClosingMinLength:     cfg.Generation.ClosingMinLength,
		SlotProbabilities:    make(map[compose.Slot]float64, len(cfg.Generation.SlotProbabilities)),
		Patterns:             compose.Patterns,
	}
	for slot, p := range cfg.Generation.SlotProbabilities {
		composeOpts.SlotProbabilities[compose.Slot(slot)] = p
	}

	return Settings{
		Compose: composeOpts,
		Metadata: metadata.Options{
			RatingWeights:       cfg.Weights.RatingWeights(),
			RatingJitter:        cfg.Generation.RatingJitter,
			VerifiedProbability: cfg.Generation.VerifiedProbability,
		},
		Locales:  cfg.Weights.Locales,
		Personas: cfg.Weights.Personas,
	}
}

// LedgerOptions maps loaded configuration onto tracker options.
func LedgerOptions(cfg *config.Config) ledger.Options {
	return ledger.Options{
		EvictThreshold:     cfg.Generation.EvictThreshold,
		EvictFraction:      cfg.Generation.EvictFraction,
		PersistProbability: cfg.Generation.PersistProbability,
	}
}

// DefaultSettings returns the stock tuning of every stage.
func DefaultSettings() Settings {
	meta := metadata.DefaultOptions()
	return Settings{
		Compose:  compose.DefaultOptions(),
		Metadata: meta,
		Locales:  map[string]float64{"en": 0.55, "de": 0.2, "fr": 0.15, "es": 0.1},
		Personas: map[string]float64{
			"young_professional": 0.3,
			"student":            0.2,
			"parent":             0.25,
			"retiree":            0.1,
			"fashion_enthusiast": 0.15,
		},
	}
}

// NewRand returns the PCG source every stage draws from. A zero seed is
// replaced by the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator produces reviews. It owns its random source and shares the
// tracker's concurrency contract: one goroutine at a time.
type Generator struct {
	registry *locale.Registry
	selector *selector.Selector
	engine   *compose.Engine
	meta     *metadata.Generator
	rng      *rand.Rand
	metrics  *metrics.Metrics
}

// New assembles a Generator. clock may be nil to use time.Now.
func New(registry *locale.Registry, tracker *ledger.Tracker, settings Settings, rng *rand.Rand, clock func() time.Time, m *metrics.Metrics) *Generator {
	return &Generator{
		registry: registry,
		selector: selector.New(settings.Locales, settings.Personas),
		engine:   compose.New(tracker, settings.Compose),
		meta:     metadata.New(settings.Metadata, clock),
		rng:      rng,
		metrics:  m,
	}
}

// Generate produces one review of product.
func (g *Generator) Generate(ctx context.Context, product core.Product, opts Options) (core.Review, error) {
	code := opts.Locale
	if code == "" {
		drawn, err := g.selector.Locale(g.rng)
		if err != nil {
			return core.Review{}, err
		}
		code = drawn
	}
	pack, err := g.registry.Get(code)
	if err != nil {
		return core.Review{}, err
	}

	persona := opts.Persona
	if persona == "" {
		if persona, err = g.selector.Persona(g.rng); err != nil {
			return core.Review{}, err
		}
	}

	rating := opts.Rating
	if rating == 0 {
		if rating, err = g.meta.Rating(g.rng); err != nil {
			return core.Review{}, err
		}
	} else if !core.ValidRating(rating) {
		return core.Review{}, fmt.Errorf("rating %d outside %d-%d", rating, core.MinRating, core.MaxRating)
	}

	found := insights.Extract(product, pack)
	res, err := g.engine.Compose(ctx, g.rng, compose.Request{
		Pack:     pack,
		Product:  product,
		Insights: found,
		Rating:   rating,
	})
	if err != nil {
		return core.Review{}, fmt.Errorf("failed to compose review: %w", err)
	}

	author, err := g.meta.Author(g.rng, pack)
	if err != nil {
		return core.Review{}, err
	}

	review := core.Review{
		ID:         g.meta.ID(g.rng),
		ProductID:  product.ID,
		Title:      res.Title,
		Body:       res.Body,
		Rating:     rating,
		Locale:     pack.Code,
		Persona:    persona,
		AuthorName: author,
		Date:       g.meta.Date(g.rng),
		Verified:   g.meta.Verified(g.rng),
	}

	g.metrics.RecordGenerated(pack.Code, string(res.Form))
	logger.Debug("Generated review",
		"product_id", product.ID,
		"locale", review.Locale,
		"persona", review.Persona,
		"rating", review.Rating,
		"form", string(res.Form),
		"insights", len(found.Tags()))

	return review, nil
}

// GenerateBatch produces n reviews of product with the same pinned options.
func (g *Generator) GenerateBatch(ctx context.Context, product core.Product, n int, opts Options) ([]core.Review, error) {
	reviews := make([]core.Review, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return reviews, err
		}
		review, err := g.Generate(ctx, product, opts)
		if err != nil {
			return reviews, fmt.Errorf("review %d: %w", i, err)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
