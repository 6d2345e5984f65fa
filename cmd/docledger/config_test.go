package main

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset uses default", "", 5 * time.Second},
		{"go duration", "90s", 90 * time.Second},
		{"minutes", "2m", 2 * time.Minute},
		{"bare seconds", "45", 45 * time.Second},
		{"garbage uses default", "soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGetEnvIntAndBool(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")
	t.Setenv("TEST_BOOL", "yes")
	t.Setenv("TEST_FALSE", "off")

	if got := getEnvInt("TEST_INT", 1); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("expected default 1, got %d", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("expected true for 'yes'")
	}
	if getEnvBool("TEST_FALSE", true) {
		t.Error("expected false for 'off'")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" https://a.example , ,https://b.example")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected list %q", got)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BLOB_BACKEND", "Postgres")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("VERSION_LOCK_WAIT", "3s")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BlobBackend != blobBackendPostgres {
		t.Errorf("expected postgres backend, got %q", cfg.BlobBackend)
	}
	if cfg.MaxUploadBytes != 5<<20 {
		t.Errorf("expected 5MB limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.VersionLockWait != 3*time.Second {
		t.Errorf("expected 3s lock wait, got %v", cfg.VersionLockWait)
	}
}

func TestLoadConfig_RejectsUnknownBackend(t *testing.T) {
	t.Setenv("BLOB_BACKEND", "s3")

	if _, err := loadConfig(); err == nil {
		t.Error("expected error for unknown blob backend")
	}
}

func TestLockedUploadLimit(t *testing.T) {
	tests := []struct {
		maxOpen   int
		wantLimit int
		wantOK    bool
	}{
		{25, 12, true},
		{2, 1, true},
		{1, 0, true},
		{0, 0, false},
		{-1, 0, false},
	}

	for _, tt := range tests {
		limit, ok := config{DBMaxOpenConns: tt.maxOpen}.lockedUploadLimit()
		if limit != tt.wantLimit || ok != tt.wantOK {
			t.Errorf("lockedUploadLimit() with %d conns = (%d, %v), want (%d, %v)",
				tt.maxOpen, limit, ok, tt.wantLimit, tt.wantOK)
		}
	}
}

func TestNewLogger(t *testing.T) {
	if newLogger("debug", "text") == nil {
		t.Error("expected text logger")
	}
	if newLogger("nonsense", "json") == nil {
		t.Error("expected json logger with fallback level")
	}
}
