// Package ledger keeps track of recently used phrases so the composer avoids
// short-term repetition. The usage ledger is keyed by "locale:category" and is
// persisted through a pluggable Store.
package ledger

import (
	"context"
	"math/rand/v2"
	"sort"

	"reviewsynth/internal/core"
	"reviewsynth/internal/logger"
	"reviewsynth/internal/metrics"
)

// Snapshot is the persisted form of the ledger: key to sorted phrase ids.
type Snapshot map[string][]string

// Store persists ledger snapshots. Load of a store that was never saved
// returns an empty snapshot and no error.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Key builds the ledger key of a locale bank.
func Key(locale, category string) string {
	return locale + ":" + category
}

// Options tunes eviction and persistence.
type Options struct {
	EvictThreshold     float64 // evict when available < threshold * |candidates|
	EvictFraction      float64 // share of used entries released per eviction
	PersistProbability float64 // chance of saving after each draw
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{EvictThreshold: 0.3, EvictFraction: 0.5, PersistProbability: 0.1}
}

// Tracker draws phrases from candidate lists while remembering what was used.
// A Tracker is not safe for concurrent use; callers serialise access or keep
// one Tracker per shard of keys.
type Tracker struct {
	store   Store
	opts    Options
	used    map[string]map[string]struct{}
	metrics *metrics.Metrics
}

// NewTracker builds a Tracker on store, seeded with whatever the store holds.
// A load failure starts from an empty ledger and is logged.
func NewTracker(ctx context.Context, store Store, opts Options, m *metrics.Metrics) *Tracker {
	t := &Tracker{
		store:   store,
		opts:    opts,
		used:    make(map[string]map[string]struct{}),
		metrics: m,
	}
	if store == nil {
		return t
	}
	snap, err := store.Load(ctx)
	if err != nil {
		logger.Error("Failed to load usage ledger, starting empty", err)
		return t
	}
	for key, ids := range snap {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		t.used[key] = set
	}
	return t
}

// Draw picks one of candidates for locale/category, preferring phrases not
// used recently, and records it as used.
func (t *Tracker) Draw(ctx context.Context, rng *rand.Rand, candidates []string, locale, category string) (string, error) {
	key := Key(locale, category)
	if len(candidates) == 0 {
		return "", core.NewConfigurationError(key, "empty candidate list")
	}

	used := t.used[key]
	if used == nil {
		used = make(map[string]struct{})
		t.used[key] = used
	}

	pool := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		pool[c] = struct{}{}
	}
	for id := range used {
		if _, ok := pool[id]; !ok {
			delete(used, id)
		}
	}

	available := t.available(candidates, used)
	if float64(len(available)) < t.opts.EvictThreshold*float64(len(candidates)) {
		evicted := t.evict(rng, used)
		t.metrics.RecordEviction(key, evicted)
		logger.Debug("Evicted ledger entries", "key", key, "evicted", evicted, "remaining", len(used))
		available = t.available(candidates, used)
	}
	if len(available) == 0 {
		available = candidates
	}

	phrase := available[rng.IntN(len(available))]
	used[phrase] = struct{}{}
	t.metrics.RecordDraw(key)

	if rng.Float64() < t.opts.PersistProbability {
		t.persist(ctx)
	}
	return phrase, nil
}

// available returns candidates not in used, in candidate order and without
// duplicates.
func (t *Tracker) available(candidates []string, used map[string]struct{}) []string {
	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		if _, ok := used[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// evict removes floor(EvictFraction * |used|) random entries from used.
func (t *Tracker) evict(rng *rand.Rand, used map[string]struct{}) int {
	ids := sortedIDs(used)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	n := int(t.opts.EvictFraction * float64(len(ids)))
	for _, id := range ids[:n] {
		delete(used, id)
	}
	return n
}

func (t *Tracker) persist(ctx context.Context) {
	if t.store == nil {
		return
	}
	err := t.store.Save(ctx, t.Snapshot())
	t.metrics.RecordSave(err)
	if err != nil {
		logger.Warn("Failed to persist usage ledger", "error", err.Error())
	}
}

// Flush saves the full ledger unconditionally and returns any store error.
func (t *Tracker) Flush(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	err := t.store.Save(ctx, t.Snapshot())
	t.metrics.RecordSave(err)
	return err
}

// Used returns the used phrase ids of key, sorted.
func (t *Tracker) Used(key string) []string {
	return sortedIDs(t.used[key])
}

// Snapshot copies the ledger. Keys with no used entries are omitted.
func (t *Tracker) Snapshot() Snapshot {
	snap := make(Snapshot, len(t.used))
	for key, set := range t.used {
		if len(set) == 0 {
			continue
		}
		snap[key] = sortedIDs(set)
	}
	return snap
}

// Reset clears the in-memory ledger. The store is left untouched until the
// next save.
func (t *Tracker) Reset() {
	t.used = make(map[string]map[string]struct{})
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Keys returns the snapshot keys, sorted.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Size returns the total number of recorded phrase ids.
func (s Snapshot) Size() int {
	n := 0
	for _, ids := range s {
		n += len(ids)
	}
	return n
}

func (s Snapshot) clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, ids := range s {
		if len(ids) == 0 {
			continue
		}
		cp := append([]string(nil), ids...)
		sort.Strings(cp)
		out[k] = cp
	}
	return out
}
