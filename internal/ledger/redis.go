package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the ledger in a single Redis hash: one field per ledger
// key, each holding a JSON array of phrase ids.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps an existing client. hashKey names the Redis hash.
func NewRedisStore(client *redis.Client, hashKey string) *RedisStore {
	return &RedisStore{client: client, key: hashKey}
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(ctx context.Context, addr, password string, db int, hashKey string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ledger: redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, hashKey), nil
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("ledger: redis HGETALL %s: %w", s.key, err)
	}

	snap := make(Snapshot, len(fields))
	for field, raw := range fields {
		var ids []string
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("ledger: decode field %s: %w", field, err)
		}
		snap[field] = ids
	}
	return snap.clone(), nil
}

// Save replaces the hash atomically with a MULTI/EXEC pipeline.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	values := make([]any, 0, 2*len(snap))
	clean := snap.clone()
	for _, key := range clean.Keys() {
		encoded, err := json.Marshal(clean[key])
		if err != nil {
			return fmt.Errorf("ledger: encode field %s: %w", key, err)
		}
		values = append(values, key, string(encoded))
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(values) > 0 {
		pipe.HSet(ctx, s.key, values...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("ledger: redis save %s: %w", s.key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
