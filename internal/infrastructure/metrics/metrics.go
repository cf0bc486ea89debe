package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the notifier's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	changes          *prometheus.CounterVec
	outcomes         *prometheus.CounterVec
	inFlight         prometheus.Gauge
	deliveryDuration prometheus.Histogram
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		changes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifier_changes_total",
				Help: "Changes received from the notification feed",
			},
			[]string{"kind"},
		),
		outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifier_events_total",
				Help: "Notification pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "notifier_pipelines_in_flight",
			Help: "Pipelines currently running",
		}),
		deliveryDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "notifier_delivery_duration_seconds",
			Help:    "Duration of token exchange plus gateway send",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) Change(kind string) {
	if m == nil {
		return
	}
	m.changes.WithLabelValues(kind).Inc()
}

func (m *Metrics) Outcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PipelineStarted() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) PipelineDone() {
	if m == nil {
		return
	}
	m.inFlight.Dec()
}

func (m *Metrics) DeliveryTook(d time.Duration) {
	if m == nil {
		return
	}
	m.deliveryDuration.Observe(d.Seconds())
}
