package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/reef-guardian/internal/clock"
	"github.com/sweeney/reef-guardian/internal/gpio"
	"github.com/sweeney/reef-guardian/internal/guardian"
	"github.com/sweeney/reef-guardian/internal/mqtt"
	"github.com/sweeney/reef-guardian/internal/status"
)

func guardianConfig() guardian.Config {
	return guardian.Config{
		Debounce:          20 * time.Millisecond,
		WindowTolerance:   50 * time.Millisecond,
		WindowMargin:      500 * time.Millisecond,
		WindowDefault:     time.Second,
		IdlePoll:          5 * time.Millisecond,
		DispatchTick:      5 * time.Millisecond,
		CellLockTimeout:   50 * time.Millisecond,
		TrendWindow:       10,
		TrendPublishEvery: 5,
		InboundCap:        16,
		EdgeCap:           8,
		SampleCap:         16,
	}
}

type harness struct {
	g       *guardian.Guardian
	board   *gpio.FakeBoard
	client  *mqtt.FakeClient
	tracker *status.Tracker
	stop    chan struct{}
	done    chan struct{}
}

// startHarness wires the guardian through its public surface only: edges
// arrive through the board, payloads through the client, exactly as in main.
func startHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		client:  mqtt.NewFakeClient(),
		tracker: status.NewTracker(time.Now(), status.Config{}, nil),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	var edgeTarget func(time.Time)
	h.board = gpio.NewFakeBoard(func(at time.Time) {
		if edgeTarget != nil {
			edgeTarget(at)
		}
	})

	h.g = guardian.New(guardianConfig(), clock.Real{}, h.board, h.client, h.client, h.tracker)
	edgeTarget = h.g.OnButtonEdge
	h.client.Deliver = h.g.Deliver

	go func() {
		h.g.Run(h.stop)
		close(h.done)
	}()
	t.Cleanup(func() {
		select {
		case <-h.stop:
		default:
			close(h.stop)
		}
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
			t.Error("guardian did not stop")
		}
	})
	return h
}

func await(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// TestIntegrationAlertToAck drives a distress alert from broker payload to
// GPIO output and published acknowledgement.
func TestIntegrationAlertToAck(t *testing.T) {
	h := startHarness(t)

	in, err := mqtt.ParseInbound(mqtt.TopicAlert, []byte(`{"id":"heater-fault"}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h.client.Inject(in)

	await(t, "acknowledgement", func() bool { return h.client.AckCount() == 1 })
	await(t, "distress output", func() bool { return h.board.State(gpio.LineDistress) })

	ack := h.client.Acks[0]
	if ack.ID != "heater-fault" {
		t.Errorf("unexpected ack id %s", ack.ID)
	}
	if ack.Latency < 0 || ack.Latency > time.Second {
		t.Errorf("implausible ack latency %v", ack.Latency)
	}

	payload, err := mqtt.FormatAck(ack)
	if err != nil {
		t.Fatalf("format error: %v", err)
	}
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("ack payload is not valid JSON: %v", err)
	}
	if _, ok := parsed["ack"]; !ok {
		t.Error("ack payload missing envelope")
	}
}

// TestIntegrationWindowSync drives a dosing window and a button press from
// the outside and expects exactly one published sync confirmation.
func TestIntegrationWindowSync(t *testing.T) {
	h := startHarness(t)

	in, err := mqtt.ParseInbound(mqtt.TopicWindow, []byte(`{"action":"open","duration_ms":5000}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h.client.Inject(in)

	await(t, "window open", func() bool { return h.tracker.Snapshot().WindowOpen })
	h.board.PressButton(time.Now())

	await(t, "sync publish", func() bool { return h.client.SyncCount() == 1 })
	snap := h.tracker.Snapshot()
	if snap.Counters.SyncSuccess != 1 || snap.Counters.SyncMiss != 0 {
		t.Errorf("unexpected counters: %+v", snap.Counters)
	}
}

// TestIntegrationPatternBlinks delivers a blink schedule and watches the LED
// toggle on the fake board.
func TestIntegrationPatternBlinks(t *testing.T) {
	h := startHarness(t)

	in, err := mqtt.ParseInbound(mqtt.TopicPattern, []byte(`{"channel":"blue","intervals_ms":[1,1]}`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	h.client.Inject(in)

	await(t, "blink transitions", func() bool {
		return h.board.TransitionCount(gpio.LineBlue) >= 4
	})
}

// TestIntegrationSamplesToTrend streams sensor samples and expects a trend
// report carrying the rolling average.
func TestIntegrationSamplesToTrend(t *testing.T) {
	h := startHarness(t)

	for _, v := range []float64{8.0, 8.2, 8.1, 8.3, 8.4} {
		in, err := mqtt.ParseInbound(mqtt.TopicSample, []byte(`{"value":`+formatFloat(v)+`}`))
		if err != nil {
			t.Fatalf("parse error: %v", err)
		}
		h.client.Inject(in)
	}

	await(t, "trend publish", func() bool { return h.client.TrendCount() >= 1 })
	tr := h.client.Trends[0]
	if tr.Samples != 5 {
		t.Errorf("expected 5 samples, got %d", tr.Samples)
	}
	if tr.Average < 8.19 || tr.Average > 8.21 {
		t.Errorf("expected average near 8.2, got %f", tr.Average)
	}
}

func formatFloat(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
