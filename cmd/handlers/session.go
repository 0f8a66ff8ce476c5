package handlers

import (
	"context"
	"fmt"
	"io"
	"time"

	"reviewsynth/internal/config"
	"reviewsynth/internal/generator"
	"reviewsynth/internal/langid"
	"reviewsynth/internal/ledger"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/logger"
	"reviewsynth/internal/metrics"
	"reviewsynth/internal/quality"
	"reviewsynth/internal/sentiment"
)

// session holds everything a command needs, built from configuration.
type session struct {
	cfg      *config.Config
	registry *locale.Registry
	metrics  *metrics.Metrics
	store    ledger.Store
	closer   io.Closer
	tracker  *ledger.Tracker
}

// openSession loads locale packs and, when withLedger is set, opens the
// configured ledger store and a tracker on it.
func openSession(ctx context.Context, withLedger bool) (*session, error) {
	cfg := config.Get()

	registry, err := locale.Load(cfg.Locales.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load locale packs: %w", err)
	}

	sess := &session{
		cfg:      cfg,
		registry: registry,
		metrics:  metrics.New(),
	}
	if !withLedger {
		return sess, nil
	}

	store, closer, err := ledger.Open(ctx, cfg.Ledger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s ledger: %w", cfg.Ledger.Backend, err)
	}
	sess.store = store
	sess.closer = closer
	sess.tracker = ledger.NewTracker(ctx, store, generator.LedgerOptions(cfg), sess.metrics)
	return sess, nil
}

// newGenerator builds a Generator seeded from --seed or app.seed.
func (s *session) newGenerator() *generator.Generator {
	seedValue := s.cfg.App.Seed
	if seed != 0 {
		seedValue = seed
	}
	return generator.New(
		s.registry,
		s.tracker,
		generator.SettingsFromConfig(s.cfg),
		generator.NewRand(seedValue),
		generatorClock(s.cfg.App),
		s.metrics,
	)
}

// generatorClock pins the metadata clock to app.reference_date when one is
// configured. nil leaves the generator on the wall clock.
func generatorClock(app config.App) func() time.Time {
	ref, ok := app.ReferenceTime()
	if !ok {
		return nil
	}
	return func() time.Time { return ref }
}

// newEvaluator builds a quality Evaluator from the scoring section.
func (s *session) newEvaluator() (*quality.Evaluator, error) {
	scoring := s.cfg.Scoring
	vectorizer, err := quality.NewTFIDFVectorizer(scoring.CacheSize)
	if err != nil {
		return nil, err
	}
	return quality.NewEvaluator(s.registry, quality.Options{
		Identifier:    langid.NewTrigramIdentifier(scoring.LanguageMinConfidence),
		Analyzer:      sentiment.NewLexiconAnalyzer(),
		Vectorizer:    vectorizer,
		Weights:       quality.DefaultWeights(),
		Thresholds:    quality.DefaultThresholds(),
		HistoryWindow: scoring.HistoryWindow,
		JaccardWindow: scoring.JaccardWindow,
		Metrics:       s.metrics,
	}), nil
}

// close flushes the ledger, releases the store and logs run metrics.
func (s *session) close(ctx context.Context) {
	if s.tracker != nil {
		if err := s.tracker.Flush(ctx); err != nil {
			logger.Error("Failed to flush usage ledger", err)
		}
	}
	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			logger.Error("Failed to close ledger store", err)
		}
	}
	logger.Info("Run metrics", s.metrics.Fields()...)
}
