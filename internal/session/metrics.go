package session

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitsync",
			Subsystem: "garmin_session",
			Name:      "logins_total",
			Help:      "Authenticated clients handed out, by how they were obtained.",
		},
		[]string{"mode"}, // reused, fresh
	)

	reuseFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitsync",
			Subsystem: "garmin_session",
			Name:      "reuse_failures_total",
			Help:      "Stored sessions that could not be reused, by reason.",
		},
		[]string{"reason"}, // expired, invalid, error
	)
)

func reuseFailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionExpired):
		return "expired"
	case errors.Is(err, ErrSessionInvalid):
		return "invalid"
	default:
		return "error"
	}
}
