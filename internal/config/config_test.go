package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Model.TreeCount != 100 {
		t.Errorf("expected default tree count 100, got %d", cfg.Model.TreeCount)
	}
}

func TestLoadFromOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[model]
tree_count = 25
seed = 7

[auth]
jwt_secret = "s3cret"
token_ttl = "12h"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Model.TreeCount != 25 || cfg.Model.Seed != 7 {
		t.Errorf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("unexpected auth config: %+v", cfg.Auth)
	}
	// Untouched sections keep defaults.
	if cfg.Model.SampleCount != 500 {
		t.Errorf("expected default sample count, got %d", cfg.Model.SampleCount)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Server.Port = -1
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative port")
	}

	bad = DefaultConfig()
	bad.Model.TestFraction = 1.5
	if err := bad.Validate(); err == nil {
		t.Error("expected error for test fraction out of range")
	}

	bad = DefaultConfig()
	bad.Auth.TokenTTL = "soon"
	if err := bad.Validate(); err == nil {
		t.Error("expected error for unparseable TTL")
	}
}
