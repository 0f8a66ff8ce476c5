// Package selector draws locale and persona targets, and any other weighted
// choice, from weight tables. It holds no state between calls.
package selector

import (
	"math/rand/v2"
	"sort"

	"reviewsynth/internal/core"
)

// Table is a named weight table. Weights need not sum to one.
type Table struct {
	Name    string
	Weights map[string]float64
}

// Pick draws one key of t proportionally to its weight. Keys are visited in
// sorted order so a seeded rng reproduces the same draw.
func (t Table) Pick(rng *rand.Rand) (string, error) {
	if len(t.Weights) == 0 {
		return "", core.NewConfigurationError(t.Name, "empty weight table")
	}

	keys := make([]string, 0, len(t.Weights))
	total := 0.0
	for k, w := range t.Weights {
		if w < 0 {
			return "", core.NewConfigurationError(t.Name+"."+k, "negative weight")
		}
		keys = append(keys, k)
		total += w
	}
	if total <= 0 {
		return "", core.NewConfigurationError(t.Name, "weights sum to zero")
	}
	sort.Strings(keys)

	target := rng.Float64() * total
	for _, k := range keys {
		target -= t.Weights[k]
		if target < 0 {
			return k, nil
		}
	}
	// Rounding can leave target at exactly zero; the last weighted key wins.
	for i := len(keys) - 1; i >= 0; i-- {
		if t.Weights[keys[i]] > 0 {
			return keys[i], nil
		}
	}
	return keys[len(keys)-1], nil
}

// Weighted picks an index into weights proportionally. It is the ordered
// counterpart of Table.Pick for fixed slices such as connectives.
func Weighted(rng *rand.Rand, name string, weights []float64) (int, error) {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, core.NewConfigurationError(name, "weights sum to zero")
	}
	target := rng.Float64() * total
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		target -= w
		if target < 0 {
			return i, nil
		}
	}
	return last, nil
}

// Selector holds the locale and persona target tables. Ratings are drawn by
// the metadata stage, which jitters them around the configured weights.
type Selector struct {
	Locales  Table
	Personas Table
}

// New builds a Selector from configured weight maps.
func New(locales, personas map[string]float64) *Selector {
	return &Selector{
		Locales:  Table{Name: "weights.locales", Weights: locales},
		Personas: Table{Name: "weights.personas", Weights: personas},
	}
}

// Locale draws a locale code.
func (s *Selector) Locale(rng *rand.Rand) (string, error) {
	return s.Locales.Pick(rng)
}

// Persona draws a persona name.
func (s *Selector) Persona(rng *rand.Rand) (string, error) {
	return s.Personas.Pick(rng)
}
