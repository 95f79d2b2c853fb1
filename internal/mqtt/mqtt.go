// Package mqtt provides MQTT ingestion and publishing with abstraction for
// testing. Inbound payloads are parsed at this boundary into a tagged
// variant, so the core routes on a kind enum instead of re-inspecting
// topics or JSON.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topics. Inbound topics are subscribed; outbound topics are published.
const (
	TopicPattern = "reef/guardian/pattern"
	TopicAlert   = "reef/guardian/alert"
	TopicWindow  = "reef/guardian/window"
	TopicSample  = "reef/guardian/sample"

	TopicAck    = "reef/guardian/ack"
	TopicSync   = "reef/guardian/sync"
	TopicTrend  = "reef/guardian/trend"
	TopicSystem = "reef/guardian/system"
)

// Kind tags an inbound payload variant.
type Kind int

const (
	KindPattern Kind = iota + 1
	KindAlert
	KindWindow
	KindSample
)

// Inbound is a decoded application payload. Exactly one variant field is
// meaningful, selected by Kind.
type Inbound struct {
	Kind    Kind
	Pattern PatternUpdate
	Alert   AlertSignal
	Window  WindowSignal
	Sample  SampleReading
}

// PatternUpdate replaces one LED channel's blink schedule. An empty
// intervals list idles the channel.
type PatternUpdate struct {
	Channel     string  `json:"channel"`
	IntervalsMs []int64 `json:"intervals_ms"`
}

// AlertSignal raises (or clears) the distress condition.
type AlertSignal struct {
	ID    string `json:"id"`
	Clear bool   `json:"clear,omitempty"`
}

// WindowSignal opens or closes the dosing window.
type WindowSignal struct {
	Action     string `json:"action"` // "open" or "close"
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// SampleReading is one raw sensor sample for trend aggregation.
type SampleReading struct {
	Value float64 `json:"value"`
}

// ParseInbound decodes a payload received on topic into its tagged variant.
func ParseInbound(topic string, payload []byte) (Inbound, error) {
	switch topic {
	case TopicPattern:
		var p PatternUpdate
		if err := json.Unmarshal(payload, &p); err != nil {
			return Inbound{}, fmt.Errorf("parse pattern: %w", err)
		}
		return Inbound{Kind: KindPattern, Pattern: p}, nil
	case TopicAlert:
		var a AlertSignal
		if err := json.Unmarshal(payload, &a); err != nil {
			return Inbound{}, fmt.Errorf("parse alert: %w", err)
		}
		return Inbound{Kind: KindAlert, Alert: a}, nil
	case TopicWindow:
		var w WindowSignal
		if err := json.Unmarshal(payload, &w); err != nil {
			return Inbound{}, fmt.Errorf("parse window: %w", err)
		}
		if w.Action != "open" && w.Action != "close" {
			return Inbound{}, fmt.Errorf("parse window: unknown action %q", w.Action)
		}
		return Inbound{Kind: KindWindow, Window: w}, nil
	case TopicSample:
		var s SampleReading
		if err := json.Unmarshal(payload, &s); err != nil {
			return Inbound{}, fmt.Errorf("parse sample: %w", err)
		}
		return Inbound{Kind: KindSample, Sample: s}, nil
	}
	return Inbound{}, fmt.Errorf("unknown topic %q", topic)
}

// AckEvent acknowledges a distress alert.
type AckEvent struct {
	ID        string
	Timestamp time.Time
	Latency   time.Duration
}

// SyncEvent confirms a button press correlated inside the dosing window.
type SyncEvent struct {
	Timestamp time.Time
	Offset    time.Duration
}

// TrendEvent carries the rolling sample average.
type TrendEvent struct {
	Timestamp time.Time
	Average   float64
	Samples   int
}

// SystemEvent represents a system lifecycle event (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Publisher publishes guardian events to the broker. Implementations must
// not crash the process on failure; callers log and continue.
type Publisher interface {
	PublishAck(event AckEvent) error
	PublishSync(event SyncEvent) error
	PublishTrend(event TrendEvent) error
	PublishSystem(event SystemEvent) error
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

type ackPayload struct {
	Ack ackInner `json:"ack"`
}

type ackInner struct {
	Timestamp string `json:"timestamp"`
	ID        string `json:"id,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// FormatAck creates the JSON payload for an alert acknowledgement.
func FormatAck(event AckEvent) ([]byte, error) {
	return json.Marshal(ackPayload{Ack: ackInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		ID:        event.ID,
		LatencyMs: event.Latency.Milliseconds(),
	}})
}

type syncPayload struct {
	Sync syncInner `json:"sync"`
}

type syncInner struct {
	Timestamp string `json:"timestamp"`
	Result    string `json:"result"`
	OffsetMs  int64  `json:"offset_ms"`
}

// FormatSync creates the JSON payload for a sync confirmation.
func FormatSync(event SyncEvent) ([]byte, error) {
	return json.Marshal(syncPayload{Sync: syncInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Result:    "SUCCESS",
		OffsetMs:  event.Offset.Milliseconds(),
	}})
}

type trendPayload struct {
	Trend trendInner `json:"trend"`
}

type trendInner struct {
	Timestamp string  `json:"timestamp"`
	Average   float64 `json:"average"`
	Samples   int     `json:"samples"`
}

// FormatTrend creates the JSON payload for a trend report.
func FormatTrend(event TrendEvent) ([]byte, error) {
	return json.Marshal(trendPayload{Trend: trendInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Average:   event.Average,
		Samples:   event.Samples,
	}})
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event. If
// event.RawPayload is set, it is returned directly (used for full status
// snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
