package trace

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/kins/internal/event"
)

// Metrics exports publish counts, reply counts and walk durations to Prometheus.
type Metrics struct {
	publishes *prometheus.CounterVec
	replies   *prometheus.CounterVec
	stopped   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kins",
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Total number of publishes",
			},
			[]string{"direction", "event"},
		),
		replies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kins",
				Subsystem: "events",
				Name:      "replies_total",
				Help:      "Total number of replies accepted by publish filters",
			},
			[]string{"direction", "event"},
		),
		stopped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kins",
				Subsystem: "events",
				Name:      "stopped_total",
				Help:      "Total number of publishes ended early by Stop",
			},
			[]string{"direction", "event"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "kins",
				Subsystem: "events",
				Name:      "publish_duration_seconds",
				Help:      "Duration of publish walks in seconds",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"direction", "event"},
		),
	}

	for _, c := range []prometheus.Collector{m.publishes, m.replies, m.stopped, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// PublishStarted implements event.Tracer.
func (m *Metrics) PublishStarted(evt *event.Event) {
	m.publishes.WithLabelValues(evt.Direction.String(), evt.Name.String()).Inc()
}

// PublishFinished implements event.Tracer.
func (m *Metrics) PublishFinished(evt *event.Event, replies []any, elapsed time.Duration) {
	labels := []string{evt.Direction.String(), evt.Name.String()}
	m.replies.WithLabelValues(labels...).Add(float64(len(replies)))
	m.duration.WithLabelValues(labels...).Observe(elapsed.Seconds())
	if evt.Stopped() {
		m.stopped.WithLabelValues(labels...).Inc()
	}
}
