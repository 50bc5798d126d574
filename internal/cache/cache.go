// Package cache stores rendered pages between requests.
package cache

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/coursesite/internal/config"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Cache is a byte cache with per-entry TTL.
type Cache interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Purge drops every entry owned by this cache.
	Purge(ctx context.Context) error
	Close() error
}

// New builds the backend selected in cfg.
func New(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (Cache, error) {
	switch cfg.Backend {
	case config.CacheMemory, "":
		return NewMemory(cfg.MaxEntries), nil
	case config.CacheRedis:
		return NewRedis(ctx, RedisOptions{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix}, logger)
	case config.CacheNone:
		return Noop{}, nil
	}
	return nil, derrors.ConfigError("unknown cache backend").WithContext("backend", string(cfg.Backend)).Build()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Purge(context.Context) error                              { return nil }
func (Noop) Close() error                                             { return nil }
