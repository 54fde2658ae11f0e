// Package metrics defines prometheus collectors for the contacts API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	Registrations  *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	PasswordResets *prometheus.CounterVec
	MailEnqueued   prometheus.Counter
}

// New registers and returns the service collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_registrations_total",
			Help: "User registration attempts by outcome.",
		}, []string{"outcome"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		PasswordResets: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "contacts_password_resets_total",
			Help: "Password reset redemptions by outcome.",
		}, []string{"outcome"}),
		MailEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "contacts_mail_enqueued_total",
			Help: "Emails handed to the background dispatcher.",
		}),
	}
}
