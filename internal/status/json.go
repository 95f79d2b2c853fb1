package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event          string     `json:"event,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	Distress       bool       `json:"distress"`
	WindowOpen     bool       `json:"window_open"`
	UptimeSeconds  int64      `json:"uptime_seconds"`
	StartTime      string     `json:"start_time"`
	Timestamp      string     `json:"timestamp"`
	MQTT           MQTTStatus `json:"mqtt"`
	Counts         CountsJSON `json:"event_counts"`
	LastAckLatency int64      `json:"last_ack_latency_us"`
	Trend          TrendJSON  `json:"trend"`
	Config         ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the guardian's counters.
type CountsJSON struct {
	SyncSuccess    int    `json:"sync_success"`
	SyncMiss       int    `json:"sync_miss"`
	AlertsAcked    int    `json:"alerts_acked"`
	InboundDropped uint64 `json:"inbound_dropped"`
	AlertsDropped  uint64 `json:"alerts_dropped"`
	EdgesDropped   uint64 `json:"edges_dropped"`
	SamplesDropped uint64 `json:"samples_dropped"`
}

// TrendJSON is the JSON representation of the rolling average.
type TrendJSON struct {
	Average float64 `json:"average"`
	Samples int     `json:"samples"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DebounceMs        int64  `json:"debounce_ms"`
	WindowToleranceMs int64  `json:"window_tolerance_ms"`
	WindowMarginMs    int64  `json:"window_margin_ms"`
	IdlePollMs        int64  `json:"idle_poll_ms"`
	DispatchTickMs    int64  `json:"dispatch_tick_ms"`
	TrendWindow       int    `json:"trend_window"`
	Broker            string `json:"broker"`
	HTTPAddr          string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Distress:       snap.Distress,
		WindowOpen:     snap.WindowOpen,
		UptimeSeconds:  int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:      snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:      snap.Now.UTC().Format(time.RFC3339),
		MQTT:           MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		LastAckLatency: snap.LastAckLatency.Microseconds(),
		Counts: CountsJSON{
			SyncSuccess:    snap.Counters.SyncSuccess,
			SyncMiss:       snap.Counters.SyncMiss,
			AlertsAcked:    snap.Counters.AlertsAcked,
			InboundDropped: snap.Counters.InboundDropped,
			AlertsDropped:  snap.Counters.AlertsDropped,
			EdgesDropped:   snap.Counters.EdgesDropped,
			SamplesDropped: snap.Counters.SamplesDropped,
		},
		Trend: TrendJSON{
			Average: snap.TrendAverage,
			Samples: snap.TrendSamples,
		},
		Config: ConfigJSON{
			DebounceMs:        snap.Config.DebounceMs,
			WindowToleranceMs: snap.Config.WindowToleranceMs,
			WindowMarginMs:    snap.Config.WindowMarginMs,
			IdlePollMs:        snap.Config.IdlePollMs,
			DispatchTickMs:    snap.Config.DispatchTickMs,
			TrendWindow:       snap.Config.TrendWindow,
			Broker:            snap.Config.Broker,
			HTTPAddr:          snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
