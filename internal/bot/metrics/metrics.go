// Package metrics provides Prometheus counters for the bot's two workflows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeFailure = "failure"
)

// Metrics tracks registration and submission outcomes.
type Metrics struct {
	RegistrationsCompleted prometheus.Counter
	Submissions            *prometheus.CounterVec
	OrphanedUploads        prometheus.Counter
}

// New registers all bot metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RegistrationsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "homeworkbot_registrations_completed_total",
			Help: "Total number of completed student registrations",
		}),
		Submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "homeworkbot_submissions_total",
			Help: "Total number of homework submissions by outcome",
		}, []string{"outcome"}),
		OrphanedUploads: f.NewCounter(prometheus.CounterOpts{
			Name: "homeworkbot_orphaned_uploads_total",
			Help: "Uploads that succeeded but whose submission record failed to persist",
		}),
	}
}

// IncRegistration records a completed registration.
func (m *Metrics) IncRegistration() {
	m.RegistrationsCompleted.Inc()
}

// IncSubmission records a submission attempt with the given outcome label.
func (m *Metrics) IncSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

// IncOrphanedUpload records a blob left in storage without a matching record.
func (m *Metrics) IncOrphanedUpload() {
	m.OrphanedUploads.Inc()
}

// Handler serves the default registry on /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
