package federation

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fedstore/pkg/domain"
)

// Recorder observes every adapter call the facade issues. Implementations
// must be safe for concurrent use; the fan-out path calls Observe from one
// goroutine per adapter.
type Recorder interface {
	Observe(store domain.StoreTag, op string, duration time.Duration, success bool)
}

// NopRecorder discards all observations. It is the default.
type NopRecorder struct{}

// Observe implements Recorder.
func (NopRecorder) Observe(domain.StoreTag, string, time.Duration, bool) {}

// PrometheusRecorder publishes adapter call latency and failure counters.
type PrometheusRecorder struct {
	latency  *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewPrometheusRecorder registers the federation metrics with reg under the
// given namespace (default "fedstore").
func NewPrometheusRecorder(reg prometheus.Registerer, namespace string) *PrometheusRecorder {
	if namespace == "" {
		namespace = "fedstore"
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adapter_call_duration_seconds",
			Help:      "Latency of individual backing-store adapter calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"store", "op"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_call_failures_total",
			Help:      "Backing-store adapter calls that returned an error or timed out.",
		}, []string{"store", "op"}),
	}
}

// Observe implements Recorder.
func (r *PrometheusRecorder) Observe(store domain.StoreTag, op string, duration time.Duration, success bool) {
	r.latency.WithLabelValues(string(store), op).Observe(duration.Seconds())
	if !success {
		r.failures.WithLabelValues(string(store), op).Inc()
	}
}
