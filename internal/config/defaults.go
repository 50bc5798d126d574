package config

import (
	"slices"
	"strings"
	"time"
)

const (
	DefaultTitle       = "Course Site"
	DefaultLocale      = "en"
	DefaultContentDir  = "./content"
	DefaultCoursesDir  = "courses"
	DefaultExtension   = ".mdx"
	DefaultPort        = 3000
	DefaultCacheTTL    = 10 * time.Minute
	DefaultCacheSize   = 512
	DefaultSyncBranch  = "main"
	DefaultSyncEvery   = 15 * time.Minute
	DefaultSubject     = "coursesite.content"
	DefaultOutputDir   = "./out"
	DefaultRedisPrefix = "coursesite:"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Search.Enabled = true
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultTitle
	}

	cfg.I18n.DefaultLocale = strings.TrimSpace(cfg.I18n.DefaultLocale)
	if cfg.I18n.DefaultLocale == "" {
		cfg.I18n.DefaultLocale = DefaultLocale
	}
	for i, l := range cfg.I18n.Locales {
		cfg.I18n.Locales[i] = strings.TrimSpace(l)
	}
	if !slices.Contains(cfg.I18n.Locales, cfg.I18n.DefaultLocale) {
		cfg.I18n.Locales = append([]string{cfg.I18n.DefaultLocale}, cfg.I18n.Locales...)
	}

	if cfg.Content.Dir == "" {
		cfg.Content.Dir = DefaultContentDir
	}
	if cfg.Content.CoursesDir == "" {
		cfg.Content.CoursesDir = DefaultCoursesDir
	}
	if cfg.Content.Extension == "" {
		cfg.Content.Extension = DefaultExtension
	}
	if !strings.HasPrefix(cfg.Content.Extension, ".") {
		cfg.Content.Extension = "." + cfg.Content.Extension
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheMemory
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheSize
	}
	if cfg.Cache.RedisPrefix == "" {
		cfg.Cache.RedisPrefix = DefaultRedisPrefix
	}

	if cfg.Search.DBPath == "" {
		cfg.Search.DBPath = ":memory:"
	}

	if cfg.Sync.Branch == "" {
		cfg.Sync.Branch = DefaultSyncBranch
	}
	if cfg.Sync.Interval == 0 {
		cfg.Sync.Interval = DefaultSyncEvery
	}

	if cfg.Events.Subject == "" {
		cfg.Events.Subject = DefaultSubject
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 0.1
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
}
