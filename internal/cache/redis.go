package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"git.home.luguber.info/inful/coursesite/internal/config"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr   string
	Prefix string
	// Client overrides Addr when set.
	Client *goredis.Client
}

// Redis stores entries in Redis under a key prefix.
type Redis struct {
	rdb    *goredis.Client
	prefix string
	log    *slog.Logger
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*Redis, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rdb := opts.Client
	if rdb == nil {
		if opts.Addr == "" {
			return nil, derrors.ConfigError("redis cache requires an address").Build()
		}
		rdb = goredis.NewClient(&goredis.Options{Addr: opts.Addr, DialTimeout: 5 * time.Second})
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = config.DefaultRedisPrefix
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, derrors.WrapError(err, derrors.CategoryCache, "redis ping failed").
			WithContext("addr", opts.Addr).Retryable().Build()
	}
	return &Redis{rdb: rdb, prefix: prefix, log: logger.With("component", "cache.redis")}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, derrors.WrapError(err, derrors.CategoryCache, "redis get").WithContext("key", key).Build()
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, r.prefix+key, val, ttl).Err(); err != nil {
		return derrors.WrapError(err, derrors.CategoryCache, "redis set").WithContext("key", key).Build()
	}
	return nil
}

// Purge deletes every key under the prefix using SCAN so the server is not blocked.
func (r *Redis) Purge(ctx context.Context) error {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, r.prefix+"*", 200).Result()
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryCache, "redis scan").Build()
		}
		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return derrors.WrapError(err, derrors.CategoryCache, "redis del").Build()
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	r.log.Debug("Purged page cache", slog.Int("keys", deleted))
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
