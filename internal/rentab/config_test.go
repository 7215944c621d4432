package rentab

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	blob := []byte("thresholds:\n  margin_pct_target: 15\nshocks:\n  resale_drop: 0.08\n")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Thresholds.MarginPctTarget != 15 {
		t.Fatalf("margin target override: got %v", cfg.Thresholds.MarginPctTarget)
	}
	if cfg.Shocks.ResaleDrop != 0.08 {
		t.Fatalf("resale drop override: got %v", cfg.Shocks.ResaleDrop)
	}
	// Untouched values keep their defaults.
	if cfg.Thresholds.IrrPctTarget != DefaultConfig().Thresholds.IrrPctTarget {
		t.Fatalf("irr target should keep default, got %v", cfg.Thresholds.IrrPctTarget)
	}
	if cfg.Multipliers.Optimistic.ResalePrice != DefaultConfig().Multipliers.Optimistic.ResalePrice {
		t.Fatalf("optimistic resale multiplier should keep default")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestValidateRejectsInvertedMultipliers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Multipliers.Optimistic.ResalePrice = 0.9
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unfavorable optimistic multiplier must be rejected")
	}

	cfg = DefaultConfig()
	cfg.Multipliers.Pessimistic.WorksBudget = 0.8
	if err := cfg.Validate(); err == nil {
		t.Fatalf("favorable pessimistic multiplier must be rejected")
	}

	// Duration feeds the annualized return, so a stretched optimistic
	// timeline would undercut the base scenario.
	cfg = DefaultConfig()
	cfg.Multipliers.Optimistic.Duration = 3.0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("optimistic duration above 1 must be rejected")
	}

	cfg = DefaultConfig()
	cfg.Multipliers.Optimistic.Duration = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero optimistic duration must be rejected")
	}

	cfg = DefaultConfig()
	cfg.Multipliers.Pessimistic.Duration = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("shortened pessimistic duration must be rejected")
	}
}

func TestLoadConfigKeepsExplicitZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	blob := []byte("thresholds:\n  gross_yield_pct_floor: 0\n")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Thresholds.GrossYieldPctFloor != 0 {
		t.Fatalf("explicit zero floor was overwritten: got %v", cfg.Thresholds.GrossYieldPctFloor)
	}
	if cfg.Thresholds.GrossYieldPctTarget != DefaultConfig().Thresholds.GrossYieldPctTarget {
		t.Fatalf("yield target should keep default, got %v", cfg.Thresholds.GrossYieldPctTarget)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
