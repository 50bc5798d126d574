package config

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Validate checks cross-field constraints after defaults have been applied.
func Validate(cfg *Config) error {
	if err := validateLocales(cfg.I18n); err != nil {
		return err
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return derrors.ConfigError("server.port out of range").WithContext("port", cfg.Server.Port).Build()
	}
	switch cfg.Cache.Backend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if cfg.Cache.RedisAddr == "" {
			return derrors.ConfigError("cache.redis_addr is required for the redis backend").Build()
		}
	default:
		return derrors.ConfigError("unknown cache backend").WithContext("backend", string(cfg.Cache.Backend)).Build()
	}
	if cfg.Sync.Enabled && cfg.Sync.URL == "" {
		return derrors.ConfigError("sync.url is required when sync is enabled").Build()
	}
	if cfg.Events.Enabled && cfg.Events.NATSURL == "" {
		return derrors.ConfigError("events.nats_url is required when events are enabled").Build()
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		return derrors.ConfigError("tracing.sample_ratio must be within [0,1]").Build()
	}
	return nil
}

func validateLocales(c I18nConfig) error {
	seen := make(map[string]struct{}, len(c.Locales))
	for _, l := range c.Locales {
		if l == "" {
			return derrors.ConfigError("empty locale in i18n.locales").Build()
		}
		if _, err := language.Parse(l); err != nil {
			return derrors.WrapError(err, derrors.CategoryConfig, fmt.Sprintf("invalid locale %q", l)).Fatal().Build()
		}
		key := strings.ToLower(l)
		if _, dup := seen[key]; dup {
			return derrors.ConfigError("duplicate locale").WithContext("locale", l).Build()
		}
		seen[key] = struct{}{}
	}
	return nil
}
