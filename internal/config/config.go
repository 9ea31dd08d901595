// Package config loads and persists the application's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Model    ModelConfig    `toml:"model"`
	Auth     AuthConfig     `toml:"auth"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	RateLimit      float64  `toml:"rate_limit"` // requests per second, 0 disables
	RateBurst      int      `toml:"rate_burst"`
}

// DatabaseConfig contains sqlite settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
}

// ModelConfig contains training and artifact settings.
type ModelConfig struct {
	SampleCount   int     `toml:"sample_count"`
	Seed          int64   `toml:"seed"`
	TestFraction  float64 `toml:"test_fraction"`
	TreeCount     int     `toml:"tree_count"`
	MaxDepth      int     `toml:"max_depth"`
	ArtifactPath  string  `toml:"artifact_path"`
	WatchArtifact bool    `toml:"watch_artifact"` // reload when the artifact file changes
	TrainOnStart  bool    `toml:"train_on_start"` // train at startup when no artifact exists
}

// AuthConfig contains token settings.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TokenTTL  string `toml:"token_ttl"` // e.g., "24h"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			RateLimit:      20,
			RateBurst:      40,
		},
		Database: DatabaseConfig{
			Path:         "",
			MaxOpenConns: 1,
		},
		Model: ModelConfig{
			SampleCount:   500,
			Seed:          42,
			TestFraction:  0.2,
			TreeCount:     100,
			MaxDepth:      10,
			ArtifactPath:  "",
			WatchArtifact: true,
			TrainOnStart:  true,
		},
		Auth: AuthConfig{
			JWTSecret: "",
			TokenTTL:  "24h",
		},
	}
}

// configDir returns the application's configuration directory, creating it
// when absent.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".adoptimizer")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return dir, nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %f", c.Server.RateLimit)
	}
	if c.Model.SampleCount < 0 {
		return fmt.Errorf("sample count cannot be negative: %d", c.Model.SampleCount)
	}
	if c.Model.TestFraction < 0 || c.Model.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be in [0, 1): %f", c.Model.TestFraction)
	}
	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		return fmt.Errorf("invalid token TTL %q: %w", c.Auth.TokenTTL, err)
	}
	return nil
}

// GetTokenTTL returns the token lifetime as a duration.
func (c *Config) GetTokenTTL() (time.Duration, error) {
	return time.ParseDuration(c.Auth.TokenTTL)
}

// DataPath returns path when non-empty, otherwise a file of the given name
// inside the configuration directory.
func DataPath(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
