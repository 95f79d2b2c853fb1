package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestDefaultTimings(t *testing.T) {
	cfg := Default()
	if got := cfg.Timing.Debounce(); got != 20*time.Millisecond {
		t.Errorf("debounce: expected 20ms, got %v", got)
	}
	if got := cfg.Timing.WindowTolerance(); got != 50*time.Millisecond {
		t.Errorf("tolerance: expected 50ms, got %v", got)
	}
	if got := cfg.Timing.Heartbeat(); got != 15*time.Minute {
		t.Errorf("heartbeat: expected 15m, got %v", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.MQTT.ClientID != "reef-guardian" {
		t.Errorf("expected default client id, got %s", cfg.MQTT.ClientID)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.toml")
	content := `
[mqtt]
broker = "tcp://broker.example:1883"

[timing]
debounce_ms = 30

[trend]
window = 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.MQTT.Broker != "tcp://broker.example:1883" {
		t.Errorf("broker not overridden: %s", cfg.MQTT.Broker)
	}
	if cfg.Timing.DebounceMs != 30 {
		t.Errorf("debounce not overridden: %d", cfg.Timing.DebounceMs)
	}
	if cfg.Trend.Window != 20 {
		t.Errorf("trend window not overridden: %d", cfg.Trend.Window)
	}
	// Untouched fields keep defaults.
	if cfg.Timing.WindowToleranceMs != 50 {
		t.Errorf("tolerance should keep default, got %d", cfg.Timing.WindowToleranceMs)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[timing]\ndebounce_ms = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("zero debounce should fail validation")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("not toml ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed TOML should fail")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty broker", func(c *Config) { c.MQTT.Broker = "" }},
		{"zero idle poll", func(c *Config) { c.Timing.IdlePollMs = 0 }},
		{"zero dispatch tick", func(c *Config) { c.Timing.DispatchTickMs = 0 }},
		{"negative tolerance", func(c *Config) { c.Timing.WindowToleranceMs = -1 }},
		{"zero trend window", func(c *Config) { c.Trend.Window = 0 }},
		{"zero queue capacity", func(c *Config) { c.Queues.Inbound = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
