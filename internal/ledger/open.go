package ledger

import (
	"context"
	"fmt"
	"io"

	"reviewsynth/internal/config"
)

// Open builds the store selected by cfg.Backend. The returned closer releases
// any connection the store holds and is never nil.
func Open(ctx context.Context, cfg config.Ledger) (Store, io.Closer, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nopCloser{}, nil
	case "", "file":
		return NewFileStore(cfg.Path), nopCloser{}, nil
	case "sqlite":
		s, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "redis":
		s, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisKey)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
