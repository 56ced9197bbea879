package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewCounter registers the service counter on the default registry. Label values are
// "<operation>_total" for successes and "<operation>_error" for failures.
func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cloudshareit",
			Name:      "general_counters",
		},
		[]string{"result"})
}
