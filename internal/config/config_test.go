package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// No config file exists relative to the test working directory, so
	// every value must come from the defaults.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Errorf("mode = %q, want release", cfg.Mode)
	}
	if cfg.Port != 3001 {
		t.Errorf("port = %d, want 3001", cfg.Port)
	}
	if cfg.ReadLimit != 32768 {
		t.Errorf("read_limit = %d, want 32768", cfg.ReadLimit)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period = %v, want 54s", cfg.PingPeriod)
	}
	if cfg.BoardRows != 6 || cfg.BoardCols != 6 {
		t.Errorf("board = %dx%d, want 6x6", cfg.BoardRows, cfg.BoardCols)
	}
}
