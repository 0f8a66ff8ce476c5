// Package metadata synthesises the non-text fields of a review: rating,
// publication date, verified flag, author name and id.
package metadata

import (
	"encoding/binary"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"reviewsynth/internal/core"
	"reviewsynth/internal/locale"
	"reviewsynth/internal/selector"
)

// Options tunes metadata synthesis.
type Options struct {
	RatingWeights       map[int]float64
	RatingJitter        float64 // each normalised weight moves by U(-jitter, +jitter)
	VerifiedProbability float64
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		RatingWeights:       map[int]float64{5: 0.55, 4: 0.25, 3: 0.1, 2: 0.05, 1: 0.05},
		RatingJitter:        0.05,
		VerifiedProbability: 0.93,
	}
}

// dateBucket is a range of days before now with its draw weight.
type dateBucket struct {
	weight   float64
	from, to int // inclusive
}

var dateBuckets = []dateBucket{
	{weight: 0.4, from: 0, to: 90},
	{weight: 0.3, from: 91, to: 365},
	{weight: 0.3, from: 366, to: 1080},
}

// Generator produces review metadata relative to an injected clock.
type Generator struct {
	opts Options
	now  func() time.Time
}

// New creates a Generator. A nil clock uses time.Now.
func New(opts Options, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{opts: opts, now: now}
}

// Rating draws a star rating from the configured weights after jittering each
// normalised weight independently. Jittered weights are clamped at zero.
func (g *Generator) Rating(rng *rand.Rand) (int, error) {
	stars := make([]int, 0, len(g.opts.RatingWeights))
	total := 0.0
	for star, w := range g.opts.RatingWeights {
		if !core.ValidRating(star) {
			return 0, core.NewConfigurationError("weights.ratings."+strconv.Itoa(star), "not a rating")
		}
		if w < 0 {
			return 0, core.NewConfigurationError("weights.ratings."+strconv.Itoa(star), "negative weight")
		}
		stars = append(stars, star)
		total += w
	}
	if total <= 0 {
		return 0, core.NewConfigurationError("weights.ratings", "empty weight table")
	}
	sort.Ints(stars)

	weights := make([]float64, len(stars))
	for i, star := range stars {
		w := g.opts.RatingWeights[star]/total + (rng.Float64()*2-1)*g.opts.RatingJitter
		if w < 0 {
			w = 0
		}
		weights[i] = w
	}

	idx, err := selector.Weighted(rng, "weights.ratings", weights)
	if err != nil {
		return 0, err
	}
	return stars[idx], nil
}

// Date draws a publication date: 40% within the last 90 days, 30% within the
// rest of the year and 30% up to about three years back, uniform by day
// within each bucket.
func (g *Generator) Date(rng *rand.Rand) time.Time {
	weights := make([]float64, len(dateBuckets))
	for i, b := range dateBuckets {
		weights[i] = b.weight
	}
	idx, _ := selector.Weighted(rng, "dates", weights)
	b := dateBuckets[idx]
	days := b.from + rng.IntN(b.to-b.from+1)
	return g.now().AddDate(0, 0, -days)
}

// Verified draws the verified-purchase flag.
func (g *Generator) Verified(rng *rand.Rand) bool {
	return rng.Float64() < g.opts.VerifiedProbability
}

// Author builds a display name like "Emma K." from the pack's name bank.
func (g *Generator) Author(rng *rand.Rand, pack *locale.Pack) (string, error) {
	if pack == nil || len(pack.Authors.First) == 0 || pack.Authors.LastInitials == "" {
		code := "locale"
		if pack != nil {
			code = pack.Code
		}
		return "", core.NewConfigurationError(code+":authors", "empty name bank")
	}
	first := pack.Authors.First[rng.IntN(len(pack.Authors.First))]
	initials := []rune(pack.Authors.LastInitials)
	return first + " " + string(initials[rng.IntN(len(initials))]) + ".", nil
}

// ID draws a version 4 UUID from rng so seeded runs reproduce their ids.
func (g *Generator) ID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rngReader{rng})
	if err != nil {
		// rngReader never fails
		return uuid.NewString()
	}
	return id.String()
}

// rngReader adapts a *rand.Rand to io.Reader.
type rngReader struct {
	rng *rand.Rand
}

func (r rngReader) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}
