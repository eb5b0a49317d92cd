package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate_RejectsBadMaxIterations(t *testing.T) {
	c := Defaults()
	c.MaxIterations = c.MinIterations - 1
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error when MaxIterations < MinIterations")
	}
}

func TestValidate_RejectsBadConfidenceLevel(t *testing.T) {
	c := Defaults()
	c.ConfidenceLevel = 1.5
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error for confidence level outside (0,1)")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.json")
	partial := map[string]any{"default_depth": 33.0, "min_iterations": 6}
	data, _ := json.Marshal(partial)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultDepth != 33.0 {
		t.Errorf("DefaultDepth = %v, want 33", cfg.DefaultDepth)
	}
	if cfg.MinIterations != 6 {
		t.Errorf("MinIterations = %v, want 6", cfg.MinIterations)
	}
	if cfg.MaxIterations != Defaults().MaxIterations {
		t.Errorf("MaxIterations should retain default, got %v", cfg.MaxIterations)
	}
}

func TestLoad_RejectsNonJSONExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.txt")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for non-.json config path")
	}
}
