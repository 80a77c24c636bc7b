package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter

	// Reactive core.
	ParameterUpdates *prometheus.CounterVec // labels: parameter={scale,shape,display_range}
	Recomputations   *prometheus.CounterVec // labels: computation={mean_on_scale,mean_on_shape}
	DomainErrors     prometheus.Counter

	// Output producers.
	OutputRequests  *prometheus.CounterVec // labels: output={curve,summary}
	CurveGeneration prometheus.Histogram

	// Recomputation event stream.
	EventsPublished  prometheus.Counter
	EventsDropped    prometheus.Counter
	PublishErrors    prometheus.Counter
	PublisherRunning prometheus.Gauge
	PublishBatchSize prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SessionsActive,
		m.SessionsEvicted,
		m.ParameterUpdates,
		m.Recomputations,
		m.DomainErrors,
		m.OutputRequests,
		m.CurveGeneration,
		m.EventsPublished,
		m.EventsDropped,
		m.PublishErrors,
		m.PublisherRunning,
		m.PublishBatchSize,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weibull",
			Name:      "sessions_active",
			Help:      "Number of live interactive sessions.",
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "sessions_evicted_total",
			Help:      "Sessions dropped because the registry reached capacity.",
		}),
		ParameterUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "parameter_updates_total",
			Help:      "Committed input changes by parameter.",
		}, []string{"parameter"}),
		Recomputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "recomputations_total",
			Help:      "Scheduled derived-value computations by computation.",
		}, []string{"computation"}),
		DomainErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "domain_errors_total",
			Help:      "Rejected updates with out-of-domain parameters.",
		}),
		OutputRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "output_requests_total",
			Help:      "Pulled outputs by kind.",
		}, []string{"output"}),
		CurveGeneration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weibull",
			Name:      "curve_generation_duration_seconds",
			Help:      "Time to sample and frame one density curve.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "events_published_total",
			Help:      "Recomputation events written to the sink.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "events_dropped_total",
			Help:      "Recomputation events dropped because the publish queue was full.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weibull",
			Name:      "publish_errors_total",
			Help:      "Failed batch writes to the sink.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weibull",
			Name:      "publisher_running",
			Help:      "1 when the event publisher is active, 0 otherwise.",
		}),
		PublishBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weibull",
			Name:      "publish_batch_size",
			Help:      "Number of events per batch written to the sink.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}
