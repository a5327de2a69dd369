// Package metrics provides Prometheus metrics for the credential lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all credential lifecycle metrics.
type Metrics struct {
	CredentialsIssued  prometheus.Counter
	CredentialsRevoked prometheus.Counter
	CredentialsDeleted prometheus.Counter

	// Verifications by verdict (valid, bad_signature, wrong_issuer, expired, revoked)
	VerificationsTotal *prometheus.CounterVec

	IssueDurationSeconds  prometheus.Histogram
	VerifyDurationSeconds prometheus.Histogram
}

// New creates a new Metrics instance with all metrics registered.
func New() *Metrics {
	return &Metrics{
		CredentialsIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gympass_credentials_issued_total",
			Help: "Total number of credentials issued",
		}),
		CredentialsRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gympass_credentials_revoked_total",
			Help: "Total number of credentials revoked",
		}),
		CredentialsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gympass_credentials_deleted_total",
			Help: "Total number of credentials administratively deleted",
		}),
		VerificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gympass_credential_verifications_total",
			Help: "Total number of credential verifications by verdict",
		}, []string{"verdict"}),
		IssueDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gympass_credential_issue_duration_seconds",
			Help:    "Duration of credential issuance including signing and persistence",
			Buckets: prometheus.DefBuckets,
		}),
		VerifyDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "gympass_credential_verify_duration_seconds",
			Help:    "Duration of credential verification including revocation lookup",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
	}
}
