package conduit

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "conduit"

const (
	sourceEvent    = "event"
	sourceListener = "listener"
)

type metrics struct {
	published  *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	failures   *prometheus.CounterVec
	deliveries *prometheus.CounterVec
	pending    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_published_total",
			Help:      "Events accepted by PublishEvent, one per registered handler.",
		}, []string{"event_type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_dropped_total",
			Help:      "Events published with no handler registered for their type.",
		}, []string{"event_type"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "handler_failures_total",
			Help:      "Event handlers and channel listeners that returned an error or panicked.",
		}, []string{"source"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "channel_deliveries_total",
			Help:      "Listener deliveries submitted to the worker pool.",
		}, []string{"channel"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "pending_events",
			Help:      "Event tasks waiting for the event loop.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.published, m.dropped, m.failures, m.deliveries, m.pending)
	}
	return m
}
