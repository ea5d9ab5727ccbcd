package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ring.Capacity != 65536 {
		t.Errorf("expected default ring capacity 65536, got %d", cfg.Ring.Capacity)
	}
	if cfg.Risk.Limits.CircuitBreakerFailureThreshold != 5 {
		t.Errorf("expected default failure threshold 5, got %d", cfg.Risk.Limits.CircuitBreakerFailureThreshold)
	}
	if cfg.Persistence.Mode != "file-based" {
		t.Errorf("expected default persistence mode file-based, got %s", cfg.Persistence.Mode)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hft.yaml")
	yaml := []byte("ring:\n  capacity: 1024\nrisk:\n  limits:\n    max_order_size: 500\n")
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ring.Capacity != 1024 {
		t.Errorf("expected ring capacity 1024 from file, got %d", cfg.Ring.Capacity)
	}
	if cfg.Risk.Limits.MaxOrderSize != 500 {
		t.Errorf("expected max_order_size 500 from file, got %d", cfg.Risk.Limits.MaxOrderSize)
	}
}

func TestLoadEnvVarOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hft.yaml")
	yaml := []byte("risk:\n  limits:\n    max_order_size: 500\n")
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("HFT_RISK_LIMITS_MAX_ORDER_SIZE", "9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Risk.Limits.MaxOrderSize != 9999 {
		t.Errorf("expected env override of 9999, got %d", cfg.Risk.Limits.MaxOrderSize)
	}
}

func TestCircuitBreakerCooldownDuration(t *testing.T) {
	cfg := defaults()
	if got := cfg.CircuitBreakerCooldown(); got.Seconds() != 30 {
		t.Errorf("expected default cooldown of 30s, got %v", got)
	}
}
