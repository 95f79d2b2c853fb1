// Package guardian wires the priority-tiered activity set: an urgent
// distress responder, a medium-priority dispatcher that owns all network
// turnaround, and a background trend aggregator. Activities communicate
// only through bounded queues and shared cells; nothing blocks without a
// timeout except the purely event-driven receives.
package guardian

import (
	"log"
	"time"

	"github.com/sweeney/reef-guardian/internal/blink"
	"github.com/sweeney/reef-guardian/internal/cell"
	"github.com/sweeney/reef-guardian/internal/clock"
	"github.com/sweeney/reef-guardian/internal/edge"
	"github.com/sweeney/reef-guardian/internal/gpio"
	"github.com/sweeney/reef-guardian/internal/mqtt"
	"github.com/sweeney/reef-guardian/internal/queue"
	"github.com/sweeney/reef-guardian/internal/status"
	"github.com/sweeney/reef-guardian/internal/trend"
)

// Config holds the guardian's tuning. Zero values are not usable; build it
// from the config package's defaults.
type Config struct {
	Debounce        time.Duration
	WindowTolerance time.Duration
	WindowMargin    time.Duration
	WindowDefault   time.Duration
	IdlePoll        time.Duration
	DispatchTick    time.Duration
	CellLockTimeout time.Duration
	Heartbeat       time.Duration // 0 disables

	TrendWindow       int
	TrendPublishEvery int

	InboundCap int
	EdgeCap    int
	SampleCap  int

	RTEnabled        bool
	UrgentPriority   int
	DispatchPriority int
	BackgroundNice   int
}

// Alert is one urgent distress notification, stamped at receipt.
type Alert struct {
	ID         string
	ObservedAt time.Time
	Clear      bool
}

// receiveWait bounds the event-driven receives so activities notice a
// closed stop channel. It does not affect event latency: an arriving item
// wakes the receiver immediately.
const receiveWait = 250 * time.Millisecond

// Guardian owns the activity set and all shared state.
type Guardian struct {
	cfg     Config
	clk     clock.Clock
	pub     mqtt.Publisher
	conn    mqtt.ConnectionStatus
	tracker *status.Tracker

	distress gpio.Line
	channels []*blink.Channel

	// Event queues. alerts has capacity 1: at most one distress alert is
	// outstanding; a second arriving before the first is acknowledged is
	// dropped (documented limitation, counted).
	inbound *queue.Queue[mqtt.Inbound]
	alerts  *queue.Queue[Alert]
	edges   *queue.Queue[edge.Event]
	samples *queue.Queue[float64]
	acks    *queue.Queue[mqtt.AckEvent]
	trends  *queue.Queue[mqtt.TrendEvent]

	// Shared cells. The dispatcher is the sole writer of every cell.
	scheds     map[string]*cell.Cell[blink.Schedule]
	windowCell *cell.Cell[edge.WindowState]

	// Dispatcher-local state.
	deb        *edge.Debouncer
	corr       edge.Correlator
	lastWindow edge.WindowState // last-known-good copy for lock timeouts
	lastBeat   time.Time

	// Aggregator-local state.
	rolling    *trend.Rolling
	sinceTrend int
}

// BlinkChannels are the LED lines driven by remotely delivered schedules.
var BlinkChannels = []string{gpio.LineRed, gpio.LineGreen, gpio.LineBlue}

// New creates a Guardian. conn may be nil when the publisher cannot report
// connection state.
func New(cfg Config, clk clock.Clock, board gpio.Board, pub mqtt.Publisher, conn mqtt.ConnectionStatus, tracker *status.Tracker) *Guardian {
	g := &Guardian{
		cfg:      cfg,
		clk:      clk,
		pub:      pub,
		conn:     conn,
		tracker:  tracker,
		distress: board.Line(gpio.LineDistress),
		inbound:  queue.New[mqtt.Inbound](cfg.InboundCap),
		alerts:   queue.New[Alert](1),
		edges:    queue.New[edge.Event](cfg.EdgeCap),
		samples:  queue.New[float64](cfg.SampleCap),
		acks:     queue.New[mqtt.AckEvent](2),
		trends:   queue.New[mqtt.TrendEvent](2),
		scheds:   make(map[string]*cell.Cell[blink.Schedule]),
		deb:      edge.NewDebouncer(cfg.Debounce),
		corr:     edge.Correlator{Tolerance: cfg.WindowTolerance},
		rolling:  trend.NewRolling(cfg.TrendWindow),
		lastBeat: clk.Now(),
	}

	g.windowCell = cell.New(edge.WindowState{})

	for _, name := range BlinkChannels {
		c := cell.New(blink.Schedule{}, cell.WithClone(blink.Schedule.Clone))
		g.scheds[name] = c
		g.channels = append(g.channels,
			blink.NewChannel(name, c, board.Line(name), clk, cfg.IdlePoll, cfg.CellLockTimeout))
	}

	return g
}

// Deliver is the single ingestion function handed to the MQTT client. It
// runs in the client's callback context and must not block; a full queue
// drops the payload. Distress alerts go straight onto the urgent queue so
// their latency never includes a dispatcher cycle; everything else crosses
// the shared inbound queue.
func (g *Guardian) Deliver(in mqtt.Inbound) {
	if in.Kind == mqtt.KindAlert {
		g.deliverAlert(in.Alert)
		return
	}
	g.inbound.TrySend(in)
}

// deliverAlert stamps the alert at ingestion and enqueues it for the urgent
// responder. A clear first removes any still-queued alert: the clear
// supersedes it, and the freed slot guarantees the clear is never the one
// dropped.
func (g *Guardian) deliverAlert(sig mqtt.AlertSignal) {
	a := Alert{ID: sig.ID, ObservedAt: g.clk.Now(), Clear: sig.Clear}
	if a.Clear {
		g.alerts.TryReceive()
	}
	if !g.alerts.TrySend(a) {
		log.Printf("guardian: alert %s dropped, one already in flight", a.ID)
	}
}

// OnButtonEdge is the GPIO edge callback. Debounce and hand-off only; no
// business logic runs in the callback context. The GPIO layer serializes
// edge delivery, so the debouncer needs no lock.
func (g *Guardian) OnButtonEdge(t time.Time) {
	if !g.deb.Accept(t) {
		return
	}
	g.edges.TrySend(edge.Event{ObservedAt: t})
}
