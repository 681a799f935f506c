package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver exports processing events as Prometheus metrics
type MetricsObserver struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration prometheus.Histogram
	uploads  prometheus.Counter
}

// NewMetricsObserver creates the collectors and registers them with reg
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	o := &MetricsObserver{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "image_framer",
			Name:      "processing_total",
			Help:      "Processing requests by outcome.",
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "image_framer",
			Name:      "processing_failures_total",
			Help:      "Failed processing requests by error type.",
		}, []string{"error_type"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "image_framer",
			Name:      "processing_duration_seconds",
			Help:      "Time spent producing both artifacts.",
			Buckets:   prometheus.DefBuckets,
		}),
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "image_framer",
			Name:      "uploads_stored_total",
			Help:      "Uploads written to disk.",
		}),
	}

	for _, c := range []prometheus.Collector{o.requests, o.failures, o.duration, o.uploads} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnEvent handles processing events by updating collectors
func (o *MetricsObserver) OnEvent(ctx context.Context, event ProcessingEvent) {
	switch event.EventType {
	case UploadStored:
		o.uploads.Inc()
	case ProcessingStarted:
		o.requests.WithLabelValues("started").Inc()
	case ProcessingCompleted:
		o.requests.WithLabelValues("completed").Inc()
		o.duration.Observe(event.ProcessingTime.Seconds())
	case ProcessingFailed:
		o.requests.WithLabelValues("failed").Inc()
		errType := event.ErrorType
		if errType == "" {
			errType = "unknown"
		}
		o.failures.WithLabelValues(errType).Inc()
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}
