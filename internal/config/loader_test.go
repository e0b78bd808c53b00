package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearBookingEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"BOOKING_CONFIG_FILE",
		"BOOKING_HTTP_PORT",
		"BOOKING_STORAGE_BACKEND",
		"BOOKING_SQLITE_DSN",
		"BOOKING_SESSION_TTL",
		"BOOKING_SATURATION_CEILING",
		"BOOKING_NOTIFY_WORKERS",
		"BOOKING_NOTIFY_QUEUE_SIZE",
		"BOOKING_RATE_LIMIT_PER_SEC",
		"BOOKING_RATE_LIMIT_BURST",
		"BOOKING_CACHE_TTL",
		"BOOKING_REDIS_ADDR",
		"BOOKING_REDIS_USERNAME",
		"BOOKING_REDIS_PASSWORD",
		"BOOKING_REDIS_DB",
	}
	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearBookingEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.StorageBackend != "sqlite" {
		t.Fatalf("expected default backend sqlite, got %q", cfg.StorageBackend)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected audit trail disabled by default, got addr %q", cfg.Redis.Addr)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearBookingEnv(t)
	t.Setenv("BOOKING_HTTP_PORT", "9090")
	t.Setenv("BOOKING_STORAGE_BACKEND", "memory")
	t.Setenv("BOOKING_SESSION_TTL", "30m")
	t.Setenv("BOOKING_SATURATION_CEILING", "8")
	t.Setenv("BOOKING_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("expected backend memory, got %q", cfg.StorageBackend)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected session TTL 30m, got %s", cfg.SessionTTL)
	}
	if cfg.SaturationCeiling != 8 {
		t.Fatalf("expected ceiling 8, got %d", cfg.SaturationCeiling)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("expected redis addr, got %q", cfg.Redis.Addr)
	}
}

func TestLoad_InvalidValuesAreCollected(t *testing.T) {
	clearBookingEnv(t)
	t.Setenv("BOOKING_HTTP_PORT", "not-a-port")
	t.Setenv("BOOKING_SESSION_TTL", "-1h")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for invalid values")
	}
	for _, key := range []string{"BOOKING_HTTP_PORT", "BOOKING_SESSION_TTL"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %q", key, err.Error())
		}
	}
}

func TestLoad_YAMLFileThenEnvironment(t *testing.T) {
	clearBookingEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("http_port: 7070\nstorage_backend: memory\nrate_limit_per_sec: 2.5\nredis:\n  addr: redis:6379\n  max_entries: 100\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("BOOKING_CONFIG_FILE", path)
	t.Setenv("BOOKING_HTTP_PORT", "7071")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 7071 {
		t.Fatalf("expected environment to win over file, got %d", cfg.HTTPPort)
	}
	if cfg.StorageBackend != "memory" {
		t.Fatalf("expected backend from file, got %q", cfg.StorageBackend)
	}
	if cfg.RateLimitPerSec != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %f", cfg.RateLimitPerSec)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.MaxEntries != 100 {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearBookingEnv(t)
	t.Setenv("BOOKING_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
