package notification

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type clientMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	clientMetricsInstance *clientMetrics
	clientMetricsOnce     sync.Once
	clientDefaultRegistry = prometheus.DefaultRegisterer
)

func newClientMetrics() *clientMetrics {
	clientMetricsOnce.Do(func() {
		clientMetricsInstance = &clientMetrics{
			requests: promauto.With(clientDefaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "poopay_api_requests_total",
				Help: "Backend REST calls by operation and outcome",
			}, []string{"op", "outcome"}),
			duration: promauto.With(clientDefaultRegistry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "poopay_api_request_duration_seconds",
				Help:    "Backend REST call latency",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			}, []string{"op"}),
		}
	})
	return clientMetricsInstance
}

func (m *clientMetrics) observe(op string, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
