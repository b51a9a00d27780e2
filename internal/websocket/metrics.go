package websocket

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type liveMetrics struct {
	connected       prometheus.Gauge
	dials           *prometheus.CounterVec
	exhausted       prometheus.Counter
	events          *prometheus.CounterVec
	listenerPanics  prometheus.Counter
	activeListeners prometheus.Gauge
}

// Singleton pattern for metrics (avoid double registration in tests).
var (
	liveMetricsInstance *liveMetrics
	liveMetricsOnce     sync.Once
	liveDefaultRegistry = prometheus.DefaultRegisterer
)

func newLiveMetrics() *liveMetrics {
	liveMetricsOnce.Do(func() {
		factory := promauto.With(liveDefaultRegistry)
		liveMetricsInstance = &liveMetrics{
			connected: factory.NewGauge(prometheus.GaugeOpts{
				Name: "poopay_live_connected",
				Help: "1 while the live channel holds an authenticated session",
			}),
			dials: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "poopay_live_dials_total",
				Help: "Live channel connection attempts by outcome",
			}, []string{"outcome"}),
			exhausted: factory.NewCounter(prometheus.CounterOpts{
				Name: "poopay_live_reconnect_exhausted_total",
				Help: "Sessions that gave up after the reconnection budget",
			}),
			events: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "poopay_live_events_total",
				Help: "Live events received by result",
			}, []string{"result"}),
			listenerPanics: factory.NewCounter(prometheus.CounterOpts{
				Name: "poopay_live_listener_panics_total",
				Help: "Recovered panics raised by notification listeners",
			}),
			activeListeners: factory.NewGauge(prometheus.GaugeOpts{
				Name: "poopay_live_listeners",
				Help: "Listeners attached to the current session",
			}),
		}
	})
	return liveMetricsInstance
}
