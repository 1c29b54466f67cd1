// Package config loads the service configuration from a YAML file, with
// sane defaults so the server runs with no file at all. The Gemini API key
// always comes from the environment, never from the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opshr/hrdesk/pkg/domain"
	"github.com/opshr/hrdesk/pkg/faq"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s"
// or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full service configuration.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string `yaml:"listen_addr"`
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	Model    ModelConfig   `yaml:"model"`
	Cache    CacheConfig   `yaml:"cache"`
	Sessions SessionConfig `yaml:"sessions"`

	// ExtraFAQ entries are appended after the built-in FAQ table.
	ExtraFAQ []faq.Entry `yaml:"extra_faq"`

	// Permissions overrides the built-in role→permission matrix when
	// non-empty.
	Permissions map[domain.Role][]string `yaml:"permissions"`
}

// ModelConfig tunes the LLM provider and the tool loop.
type ModelConfig struct {
	Name          string   `yaml:"name"`
	Timeout       Duration `yaml:"timeout"`
	MaxToolRounds int      `yaml:"max_tool_rounds"`
}

// CacheConfig tunes the response cache.
type CacheConfig struct {
	TTL Duration `yaml:"ttl"`
}

// SessionConfig bounds per-session history.
type SessionConfig struct {
	MaxTurns int      `yaml:"max_turns"`
	MaxAge   Duration `yaml:"max_age"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		DBPath:     "hrdesk.db",
		Model: ModelConfig{
			Name:          "gemini-2.0-flash",
			Timeout:       Duration(time.Minute),
			MaxToolRounds: 8,
		},
		Cache:    CacheConfig{TTL: Duration(5 * time.Minute)},
		Sessions: SessionConfig{MaxTurns: 20},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name must not be empty")
	}
	if c.Model.MaxToolRounds < 1 {
		return fmt.Errorf("model.max_tool_rounds must be at least 1")
	}
	for role := range c.Permissions {
		if _, err := domain.ParseRole(string(role)); err != nil {
			return err
		}
	}
	return nil
}

// APIKey returns the Gemini API key from the environment.
func APIKey() (string, error) {
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	return key, nil
}
