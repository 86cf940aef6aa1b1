package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Queue.MaxConcurrency != 5 {
		t.Errorf("Queue.MaxConcurrency = %d, want 5", cfg.Queue.MaxConcurrency)
	}
	if cfg.Queue.PollTimeout != 20*time.Second {
		t.Errorf("Queue.PollTimeout = %v, want 20s", cfg.Queue.PollTimeout)
	}
	if cfg.Upload.MaxFileSize != 50*1024*1024 {
		t.Errorf("Upload.MaxFileSize = %d, want 50MB", cfg.Upload.MaxFileSize)
	}
	if cfg.AI.Provider != "placeholder" {
		t.Errorf("AI.Provider = %q, want placeholder", cfg.AI.Provider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QUEUE_DRIVER", "MEMORY")
	t.Setenv("QUEUE_POLL_TIMEOUT", "1500ms")
	t.Setenv("SERVER_READ_TIMEOUT", "7")
	t.Setenv("SECURITY_ENABLED", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Queue.Driver != "memory" {
		t.Errorf("Queue.Driver = %q, want memory", cfg.Queue.Driver)
	}
	if cfg.Queue.PollTimeout != 1500*time.Millisecond {
		t.Errorf("Queue.PollTimeout = %v, want 1.5s", cfg.Queue.PollTimeout)
	}
	if cfg.Server.ReadTimeout != 7*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 7s", cfg.Server.ReadTimeout)
	}
	if !cfg.Security.Enabled {
		t.Error("Security.Enabled = false, want true")
	}
	if cfg.Redis.DB != 0 {
		t.Errorf("Redis.DB = %d, want fallback 0", cfg.Redis.DB)
	}
}
