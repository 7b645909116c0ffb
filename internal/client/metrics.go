package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	endpointIdeas     = "ideas"
	endpointTransform = "transform"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easiergen",
			Subsystem: "client",
			Name:      "attempts_total",
			Help:      "HTTP attempts sent, including retries.",
		},
		[]string{"endpoint"},
	)

	outcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "easiergen",
			Subsystem: "client",
			Name:      "outcomes_total",
			Help:      "Finished operations by outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	requestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "easiergen",
			Subsystem: "client",
			Name:      "request_seconds",
			Help:      "Latency of single HTTP attempts.",
			Buckets:   []float64{.1, .5, 1, 5, 15, 30, 60, 120, 240},
		},
		[]string{"endpoint"},
	)
)

// outcome labels an error for outcomesTotal.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsSilent(err):
		return "superseded"
	}
	msg := "failed"
	switch err.(type) {
	case *StatusError:
		msg = "status"
	case *TransportError:
		msg = "transport"
	case *ValidationError:
		msg = "validation"
	case *AccountingError:
		msg = "accounting"
	}
	switch err {
	case ErrNoCredits, ErrQuotaReached:
		msg = "gated"
	case ErrTimeout:
		msg = "timeout"
	}
	return msg
}
