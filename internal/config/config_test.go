package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Format:      "form",
		Timeout:     30 * time.Second,
		SimDelay:    2 * time.Second,
		SuccessRate: 0.9,
		Theme:       "care",
		Variant:     "light",
		LogMode:     "dev",
		LogLevel:    "warn",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FORMWIZARD_ENDPOINT", "https://example.test/intake")
	t.Setenv("FORMWIZARD_TIMEOUT", "5s")
	t.Setenv("FORMWIZARD_DEMO", "true")
	t.Setenv("FORMWIZARD_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoint != "https://example.test/intake" || cfg.Timeout != 5*time.Second || !cfg.Demo || cfg.Format != "json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FORMWIZARD_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestLoadRejectsSuccessRate(t *testing.T) {
	t.Setenv("FORMWIZARD_SIMULATED_SUCCESS_RATE", "1.5")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for rate out of range")
	}
}
