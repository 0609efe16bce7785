package telemetry

import (
	"testing"

	"github.com/felixgeelhaar/blueprint/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceName != "blueprint" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "blueprint")
	}
	if cfg.Enabled {
		t.Error("Enabled should be false by default")
	}
	if cfg.Endpoint != "" {
		t.Error("Endpoint should be empty by default")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.SampleRate)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.TelemetryConfig{
		Enabled:    true,
		Endpoint:   "collector:4318",
		SampleRate: 0.25,
	})

	if !cfg.Enabled || cfg.Endpoint != "collector:4318" || cfg.SampleRate != 0.25 {
		t.Errorf("FromConfig() = %+v", cfg)
	}
	if cfg.ServiceName != "blueprint" {
		t.Errorf("ServiceName should keep its default, got %q", cfg.ServiceName)
	}
}
