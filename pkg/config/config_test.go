package config

import (
	"testing"
	"time"

	"nextup-api/pkg/logger"
)

func TestLoadConfigLogDefaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_FILE", "LOG_MAX_SIZE", "LOG_MAX_BACKUPS", "LOG_MAX_AGE", "LOG_COMPRESS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := logger.DefaultConfig()
	got := cfg.Log
	if got.Level != want.Level || got.Format != want.Format || got.Output != want.Output || got.FilePath != want.FilePath {
		t.Errorf("log = %+v, want %+v", got, want)
	}
	if got.MaxSize != want.MaxSize || got.MaxBackups != want.MaxBackups || got.MaxAge != want.MaxAge || got.Compress != want.Compress {
		t.Errorf("rotation = %+v, want %+v", got, want)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_COMPRESS", "false")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("SWEEP_RETENTION", "48h")
	t.Setenv("LATENCY_FLOOR", "not-a-duration")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Compress {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.UseMemoryStore() {
		t.Error("STORE_DRIVER=MEMORY not recognised")
	}
	if cfg.Sweep.Retention != 48*time.Hour {
		t.Errorf("retention = %v", cfg.Sweep.Retention)
	}
	if cfg.Planner.LatencyFloor != 500*time.Millisecond {
		t.Errorf("latency floor = %v, want default on bad input", cfg.Planner.LatencyFloor)
	}
}
