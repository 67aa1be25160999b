package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/telecare_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
	if cfg.AuthTokenSecret != DevTokenSecret {
		t.Error("expected the dev token secret fallback in development")
	}
	if cfg.AssistantModel == "" || cfg.AssistantBackup == "" {
		t.Error("expected default assistant models")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("expected DATABASE_URL error, got %v", err)
	}
}

func TestLoadSplitsCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/telecare_test")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
}

func TestValidateRejectsDevSecretInProduction(t *testing.T) {
	cfg := &Config{Env: "production", AuthTokenSecret: DevTokenSecret}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for dev secret in production")
	}

	cfg.AuthTokenSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty secret in production")
	}

	cfg.AuthTokenSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected real secret to pass, got %v", err)
	}
}

func TestValidatePoolBounds(t *testing.T) {
	cfg := &Config{Env: "development", DBMaxConns: 5, DBMinConns: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when min conns exceed max conns")
	}
}
