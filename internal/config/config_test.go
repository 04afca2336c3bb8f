package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Draw.LockTTL != 2*time.Minute {
		t.Errorf("lock ttl = %v", cfg.Draw.LockTTL)
	}
	if !cfg.Draw.SchedulerEnabled || cfg.Draw.Schedule == "" {
		t.Errorf("draw config = %+v", cfg.Draw)
	}
	if cfg.Webhook.QueueSize != 100 {
		t.Errorf("queue size = %d", cfg.Webhook.QueueSize)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  port: \"9000\"\ndraw:\n  lock_ttl: 45s\njwt:\n  secret: from-file\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DRAW_SCHEDULER_ENABLED", "false")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Draw.LockTTL != 45*time.Second {
		t.Errorf("lock ttl = %v", cfg.Draw.LockTTL)
	}
	if cfg.JWT.Secret != "from-env" {
		t.Errorf("jwt secret = %q, env should win", cfg.JWT.Secret)
	}
	if cfg.Draw.SchedulerEnabled {
		t.Error("scheduler still enabled")
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
	cfg.JWT.Secret = "s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.JWT.TokenTTL() != 24*time.Hour {
		t.Errorf("token ttl = %v", cfg.JWT.TokenTTL())
	}
	cfg.JWT.ExpiresIn = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero token lifetime")
	}
	cfg.JWT.ExpiresIn = 60
	cfg.Draw.LockTTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero lock ttl")
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LOTTERY_TEST_VALUE=hello\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOTTERY_TEST_VALUE", "")
	os.Unsetenv("LOTTERY_TEST_VALUE")
	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("LOTTERY_TEST_VALUE"); got != "hello" {
		t.Errorf("value = %q", got)
	}
}
