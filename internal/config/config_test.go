package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "host=localhost dbname=chat"
jwt:
  secret: "s3cret"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.JWT.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7d default TTL, got %v", cfg.JWT.TokenTTL)
	}
	if cfg.RateLimit.Limit != 20 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "host=localhost dbname=chat"
jwt:
  secret: "from-file"
`)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Fatalf("env should override file, got %q", cfg.JWT.Secret)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("expected :9999, got %q", cfg.Server.Addr)
	}
}

func TestValidation(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: "s3cret"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("missing dsn should fail validation")
	}

	path = writeConfig(t, `
database:
  dsn: "host=localhost"
jwt:
  secret: "s3cret"
storage:
  endpoint: "localhost:9000"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("storage endpoint without credentials should fail")
	}
}
