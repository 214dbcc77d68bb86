// Package metrics holds the optional Prometheus collectors for client requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values. Request failures use the lower-cased core.ErrorKind name.
const (
	OutcomeSuccess = "success"
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// Request kinds.
const (
	KindPublic  = "public"
	KindPrivate = "private"
	KindFiat    = "fiat"
)

// Metrics counts requests and observes their latency by kind, RPC method and outcome.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	// RateLimitWaits counts limiter waits by outcome: allowed, or denied when the
	// context ended first.
	RateLimitWaits *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "btcchina",
				Name:      "requests_total",
				Help:      "Requests issued, by kind, method and outcome",
			},
			[]string{"kind", "method", "outcome"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "btcchina",
				Name:      "request_duration_seconds",
				Help:      "Request latency, by kind and method",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "method"},
		),
		RateLimitWaits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "btcchina",
				Name:      "ratelimit_waits_total",
				Help:      "Client-side rate limiter waits, by outcome",
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.RequestsTotal, m.RequestDuration, m.RateLimitWaits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one finished request. A nil receiver is a no-op.
func (m *Metrics) Observe(kind, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(kind, method, outcome).Inc()
	m.RequestDuration.WithLabelValues(kind, method).Observe(elapsed.Seconds())
}

// ObserveRateLimit records one limiter wait. A nil receiver is a no-op.
func (m *Metrics) ObserveRateLimit(allowed bool) {
	if m == nil {
		return
	}
	outcome := OutcomeDenied
	if allowed {
		outcome = OutcomeAllowed
	}
	m.RateLimitWaits.WithLabelValues(outcome).Inc()
}
