package dedupe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fitsync",
		Subsystem: "dedupe",
		Name:      "records_fetched_total",
		Help:      "Activity records read from the Notion database.",
	})

	duplicateGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitsync",
		Subsystem: "dedupe",
		Name:      "duplicate_groups",
		Help:      "Duplicate groups found by the last classification.",
	})

	archiveAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitsync",
			Subsystem: "dedupe",
			Name:      "archive_attempts_total",
			Help:      "Archive requests by outcome.",
		},
		[]string{"result"},
	)
)
