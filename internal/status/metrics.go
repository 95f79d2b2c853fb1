package status

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the guardian's counters to prometheus. All methods are
// nil-safe so the tracker works with metrics disabled.
type Metrics struct {
	registry *prometheus.Registry

	syncResults *prometheus.CounterVec
	acks        prometheus.Counter
	ackLatency  prometheus.Histogram
	queueDrops  *prometheus.GaugeVec
	windowOpen  prometheus.Gauge
	distress    prometheus.Gauge
	trendAvg    prometheus.Gauge
}

// NewMetrics creates and registers the guardian's metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		syncResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_sync_classifications_total",
				Help: "Button/window correlation outcomes by result",
			},
			[]string{"result"},
		),
		acks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guardian_alert_acks_total",
			Help: "Distress alerts acknowledged",
		}),
		ackLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guardian_alert_ack_latency_seconds",
			Help:    "Core-side latency from alert receipt to acknowledgement enqueue",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25},
		}),
		queueDrops: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "guardian_queue_dropped_total",
				Help: "Cumulative items dropped against a full queue",
			},
			[]string{"queue"},
		),
		windowOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guardian_window_open",
			Help: "Whether the dosing window is currently open",
		}),
		distress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guardian_distress",
			Help: "Whether the distress flag is currently raised",
		}),
		trendAvg: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guardian_trend_average",
			Help: "Rolling average over the most recent samples",
		}),
	}

	m.registry.MustRegister(
		m.syncResults,
		m.acks,
		m.ackLatency,
		m.queueDrops,
		m.windowOpen,
		m.distress,
		m.trendAvg,
	)
	return m
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSync counts one classification outcome.
func (m *Metrics) RecordSync(success bool) {
	if m == nil {
		return
	}
	result := "miss"
	if success {
		result = "success"
	}
	m.syncResults.WithLabelValues(result).Inc()
}

// RecordAck counts one acknowledged alert and observes its latency.
func (m *Metrics) RecordAck(latency time.Duration) {
	if m == nil {
		return
	}
	m.acks.Inc()
	m.ackLatency.Observe(latency.Seconds())
}

// SetDrops refreshes the cumulative per-queue drop counts.
func (m *Metrics) SetDrops(inbound, alerts, edges, samples uint64) {
	if m == nil {
		return
	}
	m.queueDrops.WithLabelValues("inbound").Set(float64(inbound))
	m.queueDrops.WithLabelValues("alerts").Set(float64(alerts))
	m.queueDrops.WithLabelValues("edges").Set(float64(edges))
	m.queueDrops.WithLabelValues("samples").Set(float64(samples))
}

// SetWindowOpen sets the window gauge.
func (m *Metrics) SetWindowOpen(open bool) {
	if m == nil {
		return
	}
	m.windowOpen.Set(boolGauge(open))
}

// SetDistress sets the distress gauge.
func (m *Metrics) SetDistress(on bool) {
	if m == nil {
		return
	}
	m.distress.Set(boolGauge(on))
}

// SetTrend sets the trend average gauge.
func (m *Metrics) SetTrend(avg float64) {
	if m == nil {
		return
	}
	m.trendAvg.Set(avg)
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
