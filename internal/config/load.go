package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

var envFiles = []string{".env", ".env.local"}

// Load reads, expands, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.ConfigError("configuration file not found").WithContext("file", path).Build()
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read config file").WithContext("file", path).Build()
	}
	return Parse(data)
}

// Parse decodes a YAML document into a validated Config.
// ${VAR} references are expanded from the environment first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{Search: SearchConfig{Enabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "unmarshal config").Fatal().Build()
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads the first readable .env file. Existing variables win.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "file", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "file", name)
		return
	}
}

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return derrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", path)).Build()
	}

	example := Default()
	example.Site = SiteConfig{
		Title:       "Solana Courses",
		Description: "Learn Anchor, Pinocchio and SPL Token development",
		BaseURL:     "https://example.com",
	}
	example.I18n.Locales = []string{"en", "es", "zh-CN"}
	example.I18n.MessagesDir = "./messages"

	data, err := yaml.Marshal(example)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "marshal example config").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write config file").WithContext("file", path).Build()
	}
	return nil
}
