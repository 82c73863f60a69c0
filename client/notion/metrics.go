package notion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitsync",
			Subsystem: "notion",
			Name:      "requests_total",
			Help:      "Notion API requests by operation and response status.",
		},
		[]string{"operation", "status"},
	)

	recoverableFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitsync",
			Subsystem: "notion",
			Name:      "recoverable_failures_total",
			Help:      "Notion API attempts that failed with a recoverable error while retries were enabled.",
		},
		[]string{"operation"},
	)
)
