// Package config loads the daemon configuration from a TOML file with
// defaults for every field. The timing constants were tuned on the
// reference board; they are configuration, not code, because they do not
// necessarily transfer to other hardware.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full daemon configuration.
type Config struct {
	MQTT     MQTT     `toml:"mqtt"`
	Timing   Timing   `toml:"timing"`
	Pins     Pins     `toml:"pins"`
	Trend    Trend    `toml:"trend"`
	Queues   Queues   `toml:"queues"`
	Realtime Realtime `toml:"realtime"`
	HTTP     HTTP     `toml:"http"`
}

// MQTT contains broker connection settings.
type MQTT struct {
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
}

// Timing contains the scheduling and correlation constants.
type Timing struct {
	DebounceMs        int64 `toml:"debounce_ms"`
	WindowToleranceMs int64 `toml:"window_tolerance_ms"`
	WindowMarginMs    int64 `toml:"window_margin_ms"`
	WindowDefaultMs   int64 `toml:"window_default_ms"`
	IdlePollMs        int64 `toml:"idle_poll_ms"`
	DispatchTickMs    int64 `toml:"dispatch_tick_ms"`
	CellLockTimeoutMs int64 `toml:"cell_lock_timeout_ms"`
	HeartbeatMin      int64 `toml:"heartbeat_min"`
}

// Pins holds BCM pin numbers.
type Pins struct {
	Red      int `toml:"red"`
	Green    int `toml:"green"`
	Blue     int `toml:"blue"`
	Distress int `toml:"distress"`
	Button   int `toml:"button"`
}

// Trend contains rolling-average settings.
type Trend struct {
	Window       int `toml:"window"`
	PublishEvery int `toml:"publish_every"`
}

// Queues holds event queue capacities. The alert queue is fixed at one
// slot: at most one distress alert is outstanding, a colliding alert is
// dropped while the first is in flight.
type Queues struct {
	Inbound int `toml:"inbound"`
	Edges   int `toml:"edges"`
	Samples int `toml:"samples"`
}

// Realtime contains OS scheduling-class settings for the activity tiers.
type Realtime struct {
	Enabled          bool `toml:"enabled"`
	UrgentPriority   int  `toml:"urgent_priority"`
	DispatchPriority int  `toml:"dispatch_priority"`
	BackgroundNice   int  `toml:"background_nice"`
}

// HTTP contains the status server settings.
type HTTP struct {
	Addr string `toml:"addr"` // empty disables the server
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		MQTT: MQTT{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "reef-guardian",
		},
		Timing: Timing{
			DebounceMs:        20,
			WindowToleranceMs: 50,
			WindowMarginMs:    500,
			WindowDefaultMs:   1000,
			IdlePollMs:        100,
			DispatchTickMs:    20,
			CellLockTimeoutMs: 5,
			HeartbeatMin:      15,
		},
		Pins: Pins{
			Red:      17,
			Green:    27,
			Blue:     22,
			Distress: 24,
			Button:   4,
		},
		Trend: Trend{
			Window:       10,
			PublishEvery: 5,
		},
		Queues: Queues{
			Inbound: 16,
			Edges:   8,
			Samples: 16,
		},
		Realtime: Realtime{
			Enabled:          false,
			UrgentPriority:   50,
			DispatchPriority: 30,
			BackgroundNice:   10,
		},
		HTTP: HTTP{
			Addr: ":8080",
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations that would violate the scheduling model.
func (c Config) Validate() error {
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker must not be empty")
	}
	if c.Timing.DebounceMs < 1 {
		return errors.New("timing.debounce_ms must be >= 1")
	}
	if c.Timing.WindowToleranceMs < 0 {
		return errors.New("timing.window_tolerance_ms must be >= 0")
	}
	if c.Timing.WindowMarginMs < 0 {
		return errors.New("timing.window_margin_ms must be >= 0")
	}
	if c.Timing.IdlePollMs < 1 {
		return errors.New("timing.idle_poll_ms must be >= 1")
	}
	if c.Timing.DispatchTickMs < 1 {
		return errors.New("timing.dispatch_tick_ms must be >= 1")
	}
	if c.Timing.CellLockTimeoutMs < 1 {
		return errors.New("timing.cell_lock_timeout_ms must be >= 1")
	}
	if c.Trend.Window < 1 {
		return errors.New("trend.window must be >= 1")
	}
	if c.Trend.PublishEvery < 1 {
		return errors.New("trend.publish_every must be >= 1")
	}
	if c.Queues.Inbound < 1 || c.Queues.Edges < 1 || c.Queues.Samples < 1 {
		return errors.New("queue capacities must be >= 1")
	}
	return nil
}

// Duration accessors; the TOML fields stay integral milliseconds for
// readability in the file.

func (t Timing) Debounce() time.Duration        { return time.Duration(t.DebounceMs) * time.Millisecond }
func (t Timing) WindowTolerance() time.Duration { return time.Duration(t.WindowToleranceMs) * time.Millisecond }
func (t Timing) WindowMargin() time.Duration    { return time.Duration(t.WindowMarginMs) * time.Millisecond }
func (t Timing) WindowDefault() time.Duration   { return time.Duration(t.WindowDefaultMs) * time.Millisecond }
func (t Timing) IdlePoll() time.Duration        { return time.Duration(t.IdlePollMs) * time.Millisecond }
func (t Timing) DispatchTick() time.Duration    { return time.Duration(t.DispatchTickMs) * time.Millisecond }
func (t Timing) CellLockTimeout() time.Duration { return time.Duration(t.CellLockTimeoutMs) * time.Millisecond }
func (t Timing) Heartbeat() time.Duration       { return time.Duration(t.HeartbeatMin) * time.Minute }
