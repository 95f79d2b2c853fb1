package main

import (
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/reef-guardian/internal/config"
)

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name       string
		broker     string
		httpAddr   string
		realtime   bool
		wantBroker string
		wantHTTP   string
		wantRT     bool
	}{
		{
			name:       "no overrides",
			wantBroker: config.Default().MQTT.Broker,
			wantHTTP:   config.Default().HTTP.Addr,
		},
		{
			name:       "broker override",
			broker:     "tcp://other:1883",
			wantBroker: "tcp://other:1883",
			wantHTTP:   config.Default().HTTP.Addr,
		},
		{
			name:       "http override",
			httpAddr:   ":9090",
			wantBroker: config.Default().MQTT.Broker,
			wantHTTP:   ":9090",
		},
		{
			name:       "http off",
			httpAddr:   "off",
			wantBroker: config.Default().MQTT.Broker,
			wantHTTP:   "",
		},
		{
			name:       "realtime on",
			realtime:   true,
			wantBroker: config.Default().MQTT.Broker,
			wantHTTP:   config.Default().HTTP.Addr,
			wantRT:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			applyOverrides(&cfg, tt.broker, tt.httpAddr, tt.realtime)

			if cfg.MQTT.Broker != tt.wantBroker {
				t.Errorf("broker: got %q, want %q", cfg.MQTT.Broker, tt.wantBroker)
			}
			if cfg.HTTP.Addr != tt.wantHTTP {
				t.Errorf("http addr: got %q, want %q", cfg.HTTP.Addr, tt.wantHTTP)
			}
			if cfg.Realtime.Enabled != tt.wantRT {
				t.Errorf("realtime: got %v, want %v", cfg.Realtime.Enabled, tt.wantRT)
			}
		})
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("SIGINT: got %q", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("SIGTERM: got %q", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("SIGHUP: got %q", got)
	}
}

func TestRelayDropsBeforeTarget(t *testing.T) {
	r := &relay[time.Time]{}
	r.fire(time.Now()) // no target yet; must not panic

	var got []time.Time
	r.set(func(at time.Time) { got = append(got, at) })

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	r.fire(at)
	if len(got) != 1 || !got[0].Equal(at) {
		t.Errorf("unexpected deliveries: %v", got)
	}
}
