package ledger

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewsynth/internal/core"
	"reviewsynth/internal/metrics"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func noPersist() Options {
	opts := DefaultOptions()
	opts.PersistProbability = 0
	return opts
}

func TestDrawRejectsEmptyCandidates(t *testing.T) {
	tr := NewTracker(context.Background(), nil, DefaultOptions(), nil)
	_, err := tr.Draw(context.Background(), newRand(1), nil, "en", "opening.positive")

	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "en:opening.positive", cfgErr.Key)
}

func TestDrawExhaustsThenEvicts(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	tr := NewTracker(ctx, nil, noPersist(), m)
	rng := newRand(7)
	pool := []string{"a", "b", "c"}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		got, err := tr.Draw(ctx, rng, pool, "en", "generic")
		require.NoError(t, err)
		seen[got] = true
	}
	assert.Len(t, seen, 3, "first three draws should not repeat")
	assert.Equal(t, []string{"a", "b", "c"}, tr.Used("en:generic"))

	got, err := tr.Draw(ctx, rng, pool, "en", "generic")
	require.NoError(t, err)
	assert.Contains(t, pool, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evictions.WithLabelValues("en")))
	assert.LessOrEqual(t, len(tr.Used("en:generic")), len(pool))
}

func TestDrawSingletonPoolFallsBack(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(ctx, nil, noPersist(), nil)
	rng := newRand(3)

	for i := 0; i < 5; i++ {
		got, err := tr.Draw(ctx, rng, []string{"only"}, "de", "generic")
		require.NoError(t, err)
		assert.Equal(t, "only", got)
	}
	assert.Equal(t, []string{"only"}, tr.Used("de:generic"))
}

func TestDrawPrunesStaleEntries(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Snapshot{"en:generic": {"gone", "x"}}))

	tr := NewTracker(ctx, store, noPersist(), nil)
	_, err := tr.Draw(ctx, newRand(1), []string{"x", "y", "z", "w"}, "en", "generic")
	require.NoError(t, err)

	used := tr.Used("en:generic")
	assert.NotContains(t, used, "gone")
	assert.Contains(t, used, "x")
	assert.Len(t, used, 2)
}

func TestDrawNeverExceedsPool(t *testing.T) {
	ctx := context.Background()
	tr := NewTracker(ctx, nil, noPersist(), nil)
	rng := newRand(11)
	pool := []string{"a", "b", "c", "d", "e", "f", "g"}

	for i := 0; i < 200; i++ {
		_, err := tr.Draw(ctx, rng, pool, "fr", "style")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(tr.Used("fr:style")), len(pool))
	}
}

func TestDrawIsDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	pool := []string{"a", "b", "c", "d", "e"}
	run := func() []string {
		tr := NewTracker(ctx, nil, noPersist(), nil)
		rng := newRand(21)
		var out []string
		for i := 0; i < 20; i++ {
			got, err := tr.Draw(ctx, rng, pool, "en", "usage")
			require.NoError(t, err)
			out = append(out, got)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

type failingStore struct{ saves int }

func (f *failingStore) Load(ctx context.Context) (Snapshot, error) {
	return nil, errors.New("unreachable")
}

func (f *failingStore) Save(ctx context.Context, snap Snapshot) error {
	f.saves++
	return errors.New("disk full")
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{}
	m := metrics.New()
	opts := DefaultOptions()
	opts.PersistProbability = 1

	tr := NewTracker(ctx, store, opts, m)
	got, err := tr.Draw(ctx, newRand(1), []string{"a", "b"}, "en", "generic")
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerSaves.WithLabelValues("error")))

	assert.Error(t, tr.Flush(ctx))
}

func TestFlushAndReload(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tr := NewTracker(ctx, store, noPersist(), nil)
	rng := newRand(5)

	for i := 0; i < 4; i++ {
		_, err := tr.Draw(ctx, rng, []string{"a", "b", "c", "d", "e", "f"}, "es", "personal")
		require.NoError(t, err)
	}
	require.NoError(t, tr.Flush(ctx))

	reloaded := NewTracker(ctx, store, noPersist(), nil)
	assert.Equal(t, tr.Snapshot(), reloaded.Snapshot())
}

func TestResetThenFlushClearsStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, Snapshot{"en:generic": {"a", "b"}}))

	tr := NewTracker(ctx, store, noPersist(), nil)
	require.Len(t, tr.Used("en:generic"), 2)

	tr.Reset()
	require.NoError(t, tr.Flush(ctx))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestSnapshotOmitsEmptyKeys(t *testing.T) {
	tr := NewTracker(context.Background(), nil, noPersist(), nil)
	tr.used["en:empty"] = map[string]struct{}{}
	tr.used["en:generic"] = map[string]struct{}{"b": {}, "a": {}}

	snap := tr.Snapshot()
	assert.Equal(t, Snapshot{"en:generic": {"a", "b"}}, snap)
	assert.Equal(t, 2, snap.Size())
	assert.Equal(t, []string{"en:generic"}, snap.Keys())

	tr.Reset()
	assert.Empty(t, tr.Snapshot())
}
