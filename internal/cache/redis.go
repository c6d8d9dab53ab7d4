package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// compile-time check that *Redis implements Cache
var _ Cache = (*Redis)(nil)

// Redis backs the Cache interface with a shared go-redis client. The client
// pools connections internally, so one *Redis is safely used by every
// concurrent request.
//
// Errors are logged at Warn and returned; callers going through the generic
// helpers degrade to the authoritative store, so a Redis outage costs
// latency, never correctness.
type Redis struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// NewRedis creates a Redis cache client. It pings the server once so a bad
// address surfaces at startup rather than on the first request.
func NewRedis(ctx context.Context, addr, password string, logger *slog.Logger) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &Redis{rdb: rdb, logger: logger}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		r.logger.Warn("cache get failed, falling back to store",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return "", false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		r.logger.Warn("cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (r *Redis) SetTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("cache delete failed",
			slog.Int("keys", len(keys)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
