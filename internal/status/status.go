// Package status provides a thread-safe status tracker for the
// reef-guardian daemon. It is read by HTTP handlers and folded into
// system event payloads.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	DebounceMs        int64
	WindowToleranceMs int64
	WindowMarginMs    int64
	IdlePollMs        int64
	DispatchTickMs    int64
	TrendWindow       int
	Broker            string
	HTTPAddr          string
}

// Counters aggregates the guardian's event counters.
type Counters struct {
	SyncSuccess    int
	SyncMiss       int
	AlertsAcked    int
	InboundDropped uint64
	AlertsDropped  uint64
	EdgesDropped   uint64
	SamplesDropped uint64
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	StartTime      time.Time
	Now            time.Time
	MQTTConnected  bool
	Distress       bool
	WindowOpen     bool
	Counters       Counters
	LastAckLatency time.Duration
	TrendAverage   float64
	TrendSamples   int
	Config         Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex. Updates also feed
// the optional prometheus metrics.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	metrics *Metrics
}

// NewTracker creates a Tracker with the given start time and display
// config. metrics may be nil.
func NewTracker(startTime time.Time, cfg Config, metrics *Metrics) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		metrics: metrics,
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetDistress sets the distress flag.
func (t *Tracker) SetDistress(on bool) {
	t.mu.Lock()
	t.snap.Distress = on
	t.mu.Unlock()
	t.metrics.SetDistress(on)
}

// SetWindowOpen sets the dosing-window flag.
func (t *Tracker) SetWindowOpen(open bool) {
	t.mu.Lock()
	t.snap.WindowOpen = open
	t.mu.Unlock()
	t.metrics.SetWindowOpen(open)
}

// RecordSync counts one edge/window classification.
func (t *Tracker) RecordSync(success bool) {
	t.mu.Lock()
	if success {
		t.snap.Counters.SyncSuccess++
	} else {
		t.snap.Counters.SyncMiss++
	}
	t.mu.Unlock()
	t.metrics.RecordSync(success)
}

// RecordAck counts one acknowledged alert and its core-side latency.
func (t *Tracker) RecordAck(latency time.Duration) {
	t.mu.Lock()
	t.snap.Counters.AlertsAcked++
	t.snap.LastAckLatency = latency
	t.mu.Unlock()
	t.metrics.RecordAck(latency)
}

// SetDrops refreshes the cumulative per-queue drop counts.
func (t *Tracker) SetDrops(inbound, alerts, edges, samples uint64) {
	t.mu.Lock()
	t.snap.Counters.InboundDropped = inbound
	t.snap.Counters.AlertsDropped = alerts
	t.snap.Counters.EdgesDropped = edges
	t.snap.Counters.SamplesDropped = samples
	t.mu.Unlock()
	t.metrics.SetDrops(inbound, alerts, edges, samples)
}

// SetTrend refreshes the rolling average view.
func (t *Tracker) SetTrend(avg float64, samples int) {
	t.mu.Lock()
	t.snap.TrendAverage = avg
	t.snap.TrendSamples = samples
	t.mu.Unlock()
	t.metrics.SetTrend(avg)
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
