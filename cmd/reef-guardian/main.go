// Command reef-guardian drives a reef tank node: LED channels blinking on
// remotely delivered schedules, a distress responder with a bounded
// acknowledgement latency, button/dosing-window synchronization, and a
// rolling sensor trend, all published over MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sweeney/reef-guardian/internal/clock"
	"github.com/sweeney/reef-guardian/internal/config"
	"github.com/sweeney/reef-guardian/internal/gpio"
	"github.com/sweeney/reef-guardian/internal/guardian"
	"github.com/sweeney/reef-guardian/internal/mqtt"
	"github.com/sweeney/reef-guardian/internal/status"
	"github.com/sweeney/reef-guardian/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/reef-guardian.toml", "TOML config file (missing file uses defaults)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config; "off" disables)`)
	realtime := flag.Bool("realtime", false, "enable OS priority tiers (requires privilege)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverrides(&cfg, *broker, *httpAddr, *realtime)

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverrides folds command-line flags into the loaded config. Empty
// string flags mean "keep the config value"; -http off disables the server.
func applyOverrides(cfg *config.Config, broker, httpAddr string, realtime bool) {
	if broker != "" {
		cfg.MQTT.Broker = broker
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = httpAddr
	}
	if realtime {
		cfg.Realtime.Enabled = true
	}
}

// relay forwards a callback to a target installed after the callback
// source already exists. GPIO and MQTT both want their handler at
// construction time, but the guardian needs both of them first; events
// arriving before the target is installed are dropped.
type relay[T any] struct {
	mu sync.Mutex
	fn func(T)
}

func (r *relay[T]) fire(v T) {
	r.mu.Lock()
	fn := r.fn
	r.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

func (r *relay[T]) set(fn func(T)) {
	r.mu.Lock()
	r.fn = fn
	r.mu.Unlock()
}

// run wires the collaborators and blocks until a shutdown signal. Any
// failure to allocate a required primitive is fatal: continuing without it
// would silently violate the priority model.
func run(cfg config.Config) error {
	edgeRelay := &relay[time.Time]{}
	inboundRelay := &relay[mqtt.Inbound]{}

	// Initialize GPIO
	board, err := gpio.NewRealBoard(gpio.Pins{
		Red:      cfg.Pins.Red,
		Green:    cfg.Pins.Green,
		Blue:     cfg.Pins.Blue,
		Distress: cfg.Pins.Distress,
		Button:   cfg.Pins.Button,
	}, edgeRelay.fire)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer board.Close()

	// Initialize MQTT
	client, err := mqtt.NewRealClient(cfg.MQTT.Broker, cfg.MQTT.ClientID, inboundRelay.fire)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	metrics := status.NewMetrics()
	tracker := status.NewTracker(time.Now(), status.Config{
		DebounceMs:        cfg.Timing.DebounceMs,
		WindowToleranceMs: cfg.Timing.WindowToleranceMs,
		WindowMarginMs:    cfg.Timing.WindowMarginMs,
		IdlePollMs:        cfg.Timing.IdlePollMs,
		DispatchTickMs:    cfg.Timing.DispatchTickMs,
		TrendWindow:       cfg.Trend.Window,
		Broker:            cfg.MQTT.Broker,
		HTTPAddr:          cfg.HTTP.Addr,
	}, metrics)

	g := guardian.New(guardian.Config{
		Debounce:          cfg.Timing.Debounce(),
		WindowTolerance:   cfg.Timing.WindowTolerance(),
		WindowMargin:      cfg.Timing.WindowMargin(),
		WindowDefault:     cfg.Timing.WindowDefault(),
		IdlePoll:          cfg.Timing.IdlePoll(),
		DispatchTick:      cfg.Timing.DispatchTick(),
		CellLockTimeout:   cfg.Timing.CellLockTimeout(),
		Heartbeat:         cfg.Timing.Heartbeat(),
		TrendWindow:       cfg.Trend.Window,
		TrendPublishEvery: cfg.Trend.PublishEvery,
		InboundCap:        cfg.Queues.Inbound,
		EdgeCap:           cfg.Queues.Edges,
		SampleCap:         cfg.Queues.Samples,
		RTEnabled:         cfg.Realtime.Enabled,
		UrgentPriority:    cfg.Realtime.UrgentPriority,
		DispatchPriority:  cfg.Realtime.DispatchPriority,
		BackgroundNice:    cfg.Realtime.BackgroundNice,
	}, clock.Real{}, board, client, client, tracker)

	edgeRelay.set(g.OnButtonEdge)
	inboundRelay.set(g.Deliver)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, metrics)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: broker=%s debounce=%v tolerance=%v realtime=%v",
		cfg.MQTT.Broker, cfg.Timing.Debounce(), cfg.Timing.WindowTolerance(), cfg.Realtime.Enabled)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		g.Run(stop)
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Printf("received %v, shutting down", s)

	reason := signalName(s)
	event := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	tracker.SetMQTTConnected(client.IsConnected())
	event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
	if err := client.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}

	close(stop)
	<-done
	return nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}
