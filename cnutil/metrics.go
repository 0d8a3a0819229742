package cnutil

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusOperations        *prometheus.CounterVec
	prometheusOperationFailures *prometheus.CounterVec

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cnutil_operations_total",
			Help: "Number of cnutil operations by operation and profile",
		},
		[]string{"operation", "profile"},
	)
	prometheusOperationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cnutil_operation_failures_total",
			Help: "Number of failed cnutil operations by operation and profile",
		},
		[]string{"operation", "profile"},
	)
}
