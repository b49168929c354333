package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level Prometheus metrics.
type Metrics struct {
	RegistrationsTotal  prometheus.Counter
	RegistrationsFailed *prometheus.CounterVec
	LoginsTotal         *prometheus.CounterVec
	EmailsVerified      prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sisvita_registrations_total",
			Help: "Total number of completed registrations",
		}),
		RegistrationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sisvita_registrations_failed_total",
			Help: "Registrations rejected or aborted, by error code",
		}, []string{"code"}),
		LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sisvita_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		EmailsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sisvita_emails_verified_total",
			Help: "Email addresses confirmed through verification links",
		}),
	}
}
