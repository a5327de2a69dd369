package qrtoken

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks token lifecycle counters.
type Metrics struct {
	MintedTotal      *prometheus.CounterVec
	ResolutionsTotal *prometheus.CounterVec
	CleanedTotal     prometheus.Counter
}

// NewMetrics registers token metrics on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		MintedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gympass_qr_tokens_minted_total",
			Help: "QR tokens minted, by kind (client or permanent).",
		}, []string{"kind"}),
		ResolutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gympass_qr_token_resolutions_total",
			Help: "QR token resolutions, by outcome.",
		}, []string{"outcome"}),
		CleanedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gympass_qr_tokens_cleaned_total",
			Help: "Expired QR tokens removed by the cleanup sweep.",
		}),
	}
}
