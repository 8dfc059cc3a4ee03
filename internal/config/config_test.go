package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RECRUITDESK_SIGNED_URL_TTL", "")
	t.Setenv("RECRUITDESK_STORE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SignedURLTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day ttl, got %s", cfg.SignedURLTTL)
	}
	if cfg.ExtractionMaxChars != 15000 {
		t.Fatalf("expected 15000 chars, got %d", cfg.ExtractionMaxChars)
	}
	if cfg.OpenAIModel != "gpt-4o-2024-11-20" {
		t.Fatalf("unexpected model %q", cfg.OpenAIModel)
	}
	if cfg.StoreBackend != StoreBackendPostgres {
		t.Fatalf("unexpected backend %q", cfg.StoreBackend)
	}
	if !cfg.CleanupOnFailure {
		t.Fatalf("cleanup should default on")
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("RECRUITDESK_SIGNED_URL_TTL", "720h")
	t.Setenv("RECRUITDESK_MAX_FILE_BYTES", "not-a-number")
	t.Setenv("RECRUITDESK_STORE", "Memory")
	t.Setenv("RECRUITDESK_LOG_LEVEL", "debug")
	t.Setenv("RECRUITDESK_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RECRUITDESK_JWT_SECRET", "jwt")
	t.Setenv("RECRUITDESK_SESSION_SECRET", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SignedURLTTL != MaxSignedURLTTL {
		t.Fatalf("ttl should clamp to 7 days, got %s", cfg.SignedURLTTL)
	}
	if cfg.MaxFileSize != defaultMaxFileSize {
		t.Fatalf("invalid size should fall back, got %d", cfg.MaxFileSize)
	}
	if cfg.StoreBackend != StoreBackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.StoreBackend)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("expected debug level, got %v", cfg.LogLevel)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if string(cfg.SessionSecret) != "jwt" {
		t.Fatalf("session secret should default to jwt secret")
	}
}
