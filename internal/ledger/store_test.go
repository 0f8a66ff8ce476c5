package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewsynth/internal/config"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		"en:opening.positive": {"Honestly one of my best buys this year", "I am really happy with this purchase"},
		"de:generic":          {"Es entspricht der Beschreibung"},
		"fr:slang":            {" 😍"},
	}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "reviewsynth:ledger"), mr
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	sqliteStore, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	redisStore, _ := newRedisStore(t)

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "nested", "ledger.json")),
		"sqlite": sqliteStore,
		"redis":  redisStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)

			want := sampleSnapshot().clone()
			require.NoError(t, store.Save(ctx, sampleSnapshot()))

			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			// A second save replaces rather than merges.
			require.NoError(t, store.Save(ctx, Snapshot{"en:generic": {"It matches the description"}}))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, Snapshot{"en:generic": {"It matches the description"}}, got)

			require.NoError(t, store.Save(ctx, Snapshot{}))
			got, err = store.Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestTrackerSurvivesRestartOnEveryStore(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tr := NewTracker(ctx, store, noPersist(), nil)
			rng := newRand(9)
			for i := 0; i < 3; i++ {
				_, err := tr.Draw(ctx, rng, []string{"a", "b", "c", "d", "e"}, "en", "style")
				require.NoError(t, err)
			}
			require.NoError(t, tr.Flush(ctx))

			restarted := NewTracker(ctx, store, noPersist(), nil)
			assert.Equal(t, tr.Used("en:style"), restarted.Used("en:style"))
		})
	}
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}

func TestRedisStoreLayout(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, store.Save(context.Background(), Snapshot{"en:generic": {"b", "a"}}))

	assert.Equal(t, `["a","b"]`, mr.HGet("reviewsynth:ledger", "en:generic"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	mr.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), sampleSnapshot()))
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cases := []struct {
		cfg  config.Ledger
		want any
	}{
		{config.Ledger{Backend: "memory"}, &MemoryStore{}},
		{config.Ledger{Backend: "file", Path: filepath.Join(t.TempDir(), "l.json")}, &FileStore{}},
		{config.Ledger{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "l.db")}, &SQLiteStore{}},
		{config.Ledger{Backend: "redis", RedisAddr: mr.Addr(), RedisKey: "k"}, &RedisStore{}},
	}
	for _, tc := range cases {
		t.Run(tc.cfg.Backend, func(t *testing.T) {
			store, closer, err := Open(ctx, tc.cfg)
			require.NoError(t, err)
			assert.IsType(t, tc.want, store)
			assert.NoError(t, closer.Close())
		})
	}

	_, _, err := Open(ctx, config.Ledger{Backend: "etcd"})
	assert.Error(t, err)
}
