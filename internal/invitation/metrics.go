package invitation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type workflowMetrics struct {
	resolutions *prometheus.CounterVec
	conflicts   prometheus.Counter
}

var (
	workflowMetricsInstance *workflowMetrics
	workflowMetricsOnce     sync.Once
)

func newWorkflowMetrics() *workflowMetrics {
	workflowMetricsOnce.Do(func() {
		workflowMetricsInstance = &workflowMetrics{
			resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "poopay_invitation_resolutions_total",
				Help: "Invitation accept/reject attempts by resolution and outcome",
			}, []string{"resolution", "outcome"}),
			conflicts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "poopay_invitation_conflicts_total",
				Help: "Resolutions refused because one was already in flight",
			}),
		}
	})
	return workflowMetricsInstance
}
