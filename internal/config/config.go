// Package config loads and validates the coursesite YAML configuration.
package config

import "time"

// Config is the root configuration document.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	I18n    I18nConfig    `yaml:"i18n"`
	Content ContentConfig `yaml:"content"`
	Theme   ThemeConfig   `yaml:"theme"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	Sync    SyncConfig    `yaml:"sync"`
	Events  EventsConfig  `yaml:"events"`
	Tracing TracingConfig `yaml:"tracing"`
	Output  OutputConfig  `yaml:"output"`
}

// SiteConfig holds presentation metadata shared by every page.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
}

// I18nConfig describes the supported locales.
type I18nConfig struct {
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	// DetectLanguage redirects "/" to the Accept-Language preferred locale.
	DetectLanguage bool   `yaml:"detect_language"`
	MessagesDir    string `yaml:"messages_dir,omitempty"`
}

// ContentConfig locates the course tree on disk.
type ContentConfig struct {
	Dir        string `yaml:"dir"`
	CoursesDir string `yaml:"courses_dir"`
	Extension  string `yaml:"extension"`
}

// ThemeConfig points at an optional design token file.
type ThemeConfig struct {
	TokensFile string `yaml:"tokens_file,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	MetricsPort  int           `yaml:"metrics_port,omitempty"` // 0 = serve /metrics on the main port
	LiveReload   bool          `yaml:"live_reload"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// CacheBackend selects the rendered page cache implementation.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNone   CacheBackend = "none"
)

// CacheConfig configures the rendered page cache.
type CacheConfig struct {
	Backend     CacheBackend  `yaml:"backend"`
	TTL         time.Duration `yaml:"ttl"`
	MaxEntries  int           `yaml:"max_entries"`
	RedisAddr   string        `yaml:"redis_addr,omitempty"`
	RedisPrefix string        `yaml:"redis_prefix,omitempty"`
}

// SearchConfig configures the full-text lesson index.
type SearchConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// SyncConfig configures pulling the content tree from a git remote.
type SyncConfig struct {
	Enabled  bool          `yaml:"enabled"`
	URL      string        `yaml:"url,omitempty"`
	Branch   string        `yaml:"branch,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
	TokenEnv string        `yaml:"token_env,omitempty"`
}

// EventsConfig configures content change notifications over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Insecure    bool    `yaml:"insecure,omitempty"`
	SampleRatio float64 `yaml:"sample_ratio,omitempty"`
}

// OutputConfig configures static export.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}
