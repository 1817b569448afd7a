package submission

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder observes finished Submit calls.
type Recorder interface {
	ObserveSubmission(status Status, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSubmission(Status, time.Duration) {}

// PrometheusRecorder implements Recorder with Prometheus metrics.
type PrometheusRecorder struct {
	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the submission metrics on reg. A nil reg
// selects the default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		submissionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formwizard_submissions_total",
				Help: "Total number of wizard submissions by outcome",
			},
			[]string{"status"},
		),
		submissionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "formwizard_submission_duration_seconds",
				Help:    "Duration of wizard submissions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}
}

// ObserveSubmission records one submission outcome.
func (p *PrometheusRecorder) ObserveSubmission(status Status, duration time.Duration) {
	p.submissionsTotal.WithLabelValues(string(status)).Inc()
	p.submissionDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}
