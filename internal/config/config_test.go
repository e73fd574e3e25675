package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("DATABASE_URL", "postgres://localhost:5432/priorauth_test")
	t.Cleanup(func() { os.Unsetenv("DATABASE_URL") })
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
	if cfg.CodeValidityHours != 720 {
		t.Errorf("expected default validity of 720h, got %d", cfg.CodeValidityHours)
	}
	if cfg.CodeValidityWindow() != 720*time.Hour {
		t.Errorf("unexpected validity window: %v", cfg.CodeValidityWindow())
	}
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_InvalidValidityWindow(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("CODE_VALIDITY_HOURS", "0")
	t.Cleanup(func() { os.Unsetenv("CODE_VALIDITY_HOURS") })

	if _, err := Load(); err == nil {
		t.Error("expected error for non-positive CODE_VALIDITY_HOURS")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	os.Setenv("REQUEST_TIMEOUT_SEC", "10")
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("REQUEST_TIMEOUT_SEC")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("expected production mode")
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Errorf("unexpected request timeout: %v", cfg.RequestTimeout())
	}
}
