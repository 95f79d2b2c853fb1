package guardian

import (
	"log"
	"sync"
	"time"

	"github.com/sweeney/reef-guardian/internal/blink"
	"github.com/sweeney/reef-guardian/internal/edge"
	"github.com/sweeney/reef-guardian/internal/mqtt"
	"github.com/sweeney/reef-guardian/internal/rt"
	"github.com/sweeney/reef-guardian/internal/status"
)

// Run starts the blink channels and the three activities, blocking until
// stop is closed and everything has wound down.
func (g *Guardian) Run(stop <-chan struct{}) {
	var wg sync.WaitGroup

	for _, c := range g.channels {
		wg.Add(1)
		go func(c *blink.Channel) {
			defer wg.Done()
			c.Run(stop)
		}(c)
	}

	wg.Add(3)
	go g.runUrgent(stop, &wg)
	go g.runDispatch(stop, &wg)
	go g.runAggregator(stop, &wg)

	wg.Wait()
}

// runUrgent is the high-priority distress responder. Its whole wake path is
// a flag set, a latency stamp, and one queue send; the network turnaround
// for the acknowledgement belongs to the dispatcher.
func (g *Guardian) runUrgent(stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	if g.cfg.RTEnabled {
		if err := rt.PinFIFO(g.cfg.UrgentPriority); err != nil {
			log.Printf("urgent: running without realtime priority: %v", err)
		}
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		a, ok := g.alerts.Receive(receiveWait)
		if !ok {
			continue
		}

		if a.Clear {
			g.setDistress(false)
			log.Printf("urgent: distress cleared (id=%s)", a.ID)
			continue
		}

		g.setDistress(true)
		now := g.clk.Now()
		latency := now.Sub(a.ObservedAt)
		g.acks.TrySend(mqtt.AckEvent{ID: a.ID, Timestamp: now, Latency: latency})
		g.tracker.RecordAck(latency)
		log.Printf("urgent: distress %s acknowledged in %v", a.ID, latency)
	}
}

// runDispatch is the medium-priority activity. It routes inbound payloads,
// classifies button edges, expires the dosing window, and performs all
// outbound publishing. The bounded receive doubles as its yield point; it
// never works longer than one tick without giving the urgent responder a
// chance to preempt.
func (g *Guardian) runDispatch(stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	if g.cfg.RTEnabled {
		if err := rt.PinFIFO(g.cfg.DispatchPriority); err != nil {
			log.Printf("dispatch: running without realtime priority: %v", err)
		}
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		if in, ok := g.inbound.Receive(g.cfg.DispatchTick); ok {
			g.route(in)
		}

		now := g.clk.Now()
		g.drainEdges(now)
		g.drainOutbound()
		g.expireWindow(now)
		g.maybeHeartbeat(now)
		g.refreshTracker()
	}
}

// runAggregator is the background activity. Exactly one sample per wake;
// it can never hold the CPU long enough to starve the dispatcher.
func (g *Guardian) runAggregator(stop <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	if g.cfg.RTEnabled {
		if err := rt.PinBackground(g.cfg.BackgroundNice); err != nil {
			log.Printf("aggregator: running without lowered priority: %v", err)
		}
	}

	for {
		select {
		case <-stop:
			return
		default:
		}

		v, ok := g.samples.Receive(receiveWait)
		if !ok {
			continue
		}

		g.rolling.Push(v)
		g.tracker.SetTrend(g.rolling.Average(), g.rolling.Count())

		g.sinceTrend++
		if g.sinceTrend >= g.cfg.TrendPublishEvery {
			g.sinceTrend = 0
			g.trends.TrySend(mqtt.TrendEvent{
				Timestamp: g.clk.Now(),
				Average:   g.rolling.Average(),
				Samples:   g.rolling.Count(),
			})
		}
	}
}

// route hands one decoded payload to its cell or queue.
func (g *Guardian) route(in mqtt.Inbound) {
	switch in.Kind {
	case mqtt.KindPattern:
		c, ok := g.scheds[in.Pattern.Channel]
		if !ok {
			log.Printf("dispatch: pattern for unknown channel %q", in.Pattern.Channel)
			return
		}
		s := blink.FromMillis(in.Pattern.IntervalsMs)
		if !c.Write(s, g.cfg.CellLockTimeout) {
			log.Printf("dispatch: pattern write for %s timed out, keeping previous", in.Pattern.Channel)
			return
		}
		log.Printf("dispatch: pattern %s updated (%d intervals)", in.Pattern.Channel, len(s.Intervals))

	case mqtt.KindAlert:
		// Normally short-circuited in Deliver; kept so every Inbound kind
		// has a route.
		g.deliverAlert(in.Alert)

	case mqtt.KindWindow:
		g.applyWindow(in.Window)

	case mqtt.KindSample:
		g.samples.TrySend(in.Sample.Value)
	}
}

// applyWindow performs the open/close transition. OpenedAt and Duration go
// into the cell in the same write as the open flag, so a concurrently
// classified edge can never see a torn pair.
func (g *Guardian) applyWindow(sig mqtt.WindowSignal) {
	if sig.Action == "open" {
		d := time.Duration(sig.DurationMs) * time.Millisecond
		if d <= 0 {
			d = g.cfg.WindowDefault
		}
		w := edge.WindowState{Open: true, OpenedAt: g.clk.Now(), Duration: d}
		if g.windowCell.Write(w, g.cfg.CellLockTimeout) {
			g.lastWindow = w
			g.tracker.SetWindowOpen(true)
			log.Printf("dispatch: window open for %v", d)
		}
		return
	}

	if g.windowCell.Write(edge.WindowState{}, g.cfg.CellLockTimeout) {
		g.lastWindow = edge.WindowState{}
		g.tracker.SetWindowOpen(false)
		log.Printf("dispatch: window closed")
	}
}

// drainEdges classifies every queued button edge against the window. A cell
// read timeout falls back to the last-known-good window copy rather than
// stalling or guessing.
func (g *Guardian) drainEdges(now time.Time) {
	for {
		e, ok := g.edges.TryReceive()
		if !ok {
			return
		}

		if w, ok := g.windowCell.Read(g.cfg.CellLockTimeout); ok {
			g.lastWindow = w
		}

		result, offset := g.corr.Classify(e, g.lastWindow)
		g.tracker.RecordSync(result == edge.Success)
		if result != edge.Success {
			log.Printf("dispatch: edge at %v classified MISS (offset %v)", e.ObservedAt, offset)
			continue
		}

		log.Printf("dispatch: edge in window, offset %v", offset)
		if err := g.pub.PublishSync(mqtt.SyncEvent{Timestamp: now, Offset: offset}); err != nil {
			log.Printf("dispatch: sync publish error: %v", err)
		}
	}
}

// drainOutbound publishes queued acknowledgements and trend reports.
func (g *Guardian) drainOutbound() {
	for {
		ack, ok := g.acks.TryReceive()
		if !ok {
			break
		}
		if err := g.pub.PublishAck(ack); err != nil {
			log.Printf("dispatch: ack publish error: %v", err)
		}
	}
	for {
		tr, ok := g.trends.TryReceive()
		if !ok {
			break
		}
		if err := g.pub.PublishTrend(tr); err != nil {
			log.Printf("dispatch: trend publish error: %v", err)
		}
	}
}

// expireWindow auto-closes a window whose close signal never arrived.
func (g *Guardian) expireWindow(now time.Time) {
	w, ok := g.windowCell.Read(g.cfg.CellLockTimeout)
	if ok {
		g.lastWindow = w
	}
	if !g.lastWindow.Expired(now, g.cfg.WindowMargin) {
		return
	}
	if g.windowCell.Write(edge.WindowState{}, g.cfg.CellLockTimeout) {
		g.lastWindow = edge.WindowState{}
		g.tracker.SetWindowOpen(false)
		log.Printf("dispatch: window expired without close signal")
	}
}

// maybeHeartbeat publishes a system heartbeat with a full status snapshot.
func (g *Guardian) maybeHeartbeat(now time.Time) {
	if g.cfg.Heartbeat <= 0 || now.Sub(g.lastBeat) < g.cfg.Heartbeat {
		return
	}
	g.lastBeat = now
	g.refreshTracker()

	snap := g.tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := g.pub.PublishSystem(ev); err != nil {
		log.Printf("dispatch: heartbeat publish error: %v", err)
	}
}

func (g *Guardian) refreshTracker() {
	g.tracker.SetDrops(g.inbound.Dropped(), g.alerts.Dropped(), g.edges.Dropped(), g.samples.Dropped())
	if g.conn != nil {
		g.tracker.SetMQTTConnected(g.conn.IsConnected())
	}
}

func (g *Guardian) setDistress(on bool) {
	if err := g.distress.Set(on); err != nil {
		log.Printf("urgent: distress output error: %v", err)
	}
	g.tracker.SetDistress(on)
}
