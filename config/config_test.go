package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URL", "mongodb://localhost:27017")
	t.Setenv("SECRET_KEY", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Fatalf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.PushTimeout != 5*time.Second {
		t.Fatalf("expected default push timeout 5s, got %v", cfg.PushTimeout)
	}
	if cfg.BackboneEnabled() {
		t.Fatalf("expected backbone disabled without RABBITMQ_URL")
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "http://localhost:9000" {
		t.Fatalf("unexpected allow origins: %v", cfg.AllowOrigins)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Setenv("MONGODB_URL", "")
	t.Setenv("SECRET_KEY", "")
	os.Unsetenv("MONGODB_URL")
	os.Unsetenv("SECRET_KEY")

	path := filepath.Join(t.TempDir(), ".env")
	content := "MONGODB_URL=mongodb://db:27017\nSECRET_KEY=abc\nPORT=9001\nRABBITMQ_URL=amqp://guest:guest@mq:5672/\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("RABBITMQ_URL")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MongoURL != "mongodb://db:27017" {
		t.Fatalf("expected mongo url from file, got %q", cfg.MongoURL)
	}
	if cfg.Addr() != ":9001" {
		t.Fatalf("expected addr :9001, got %q", cfg.Addr())
	}
	if !cfg.BackboneEnabled() {
		t.Fatalf("expected backbone enabled")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGODB_URL", "")
	t.Setenv("SECRET_KEY", "")
	os.Unsetenv("MONGODB_URL")
	os.Unsetenv("SECRET_KEY")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected error when required variables are missing")
	}
}
