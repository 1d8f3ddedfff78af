// Package metrics holds the Prometheus collectors shared by the commands and the HTTP server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finextract",
		Name:      "uploads_total",
		Help:      "Files uploaded to the provider, by provider and result.",
	}, []string{"provider", "result"})

	RemoteDeletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finextract",
		Name:      "remote_deletes_total",
		Help:      "Remote file delete calls, by provider and result.",
	}, []string{"provider", "result"})

	Completions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finextract",
		Name:      "completions_total",
		Help:      "Model completion calls, by provider and result.",
	}, []string{"provider", "result"})

	ExtractionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "finextract",
		Name:      "extraction_duration_seconds",
		Help:      "Wall time of a single document or category extraction.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 240, 480},
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(Uploads, RemoteDeletes, Completions, ExtractionDuration)
}

// Result maps an error to the result label value.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveSince records the elapsed time since start for the given extraction kind.
func ObserveSince(kind string, start time.Time) {
	ExtractionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
