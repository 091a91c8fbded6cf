package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Wallet auth outcomes recorded on nexacred_wallet_auth_total.
const (
	OutcomeIssued            = "issued"
	OutcomeRejectedAddress   = "rejected_address"
	OutcomeRejectedSignature = "rejected_signature"
	OutcomeError             = "error"
)

// Metrics holds the service instruments. They are registered in a dedicated
// registry so they do not interfere with the default global registry, which
// keeps tests from tripping over duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	walletAuthCount *prometheus.CounterVec

	usersTotal        prometheus.Gauge
	usersWalletLinked prometheus.Gauge
}

// New creates the instrument set in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	requestCount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexacred",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "nexacred",
		Name:      "http_request_duration_seconds",
		Help:      "Request latency histogram by method and route.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})

	walletAuthCount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nexacred",
		Name:      "wallet_auth_total",
		Help:      "Wallet authentication attempts by outcome.",
	}, []string{"outcome"})

	usersTotal := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nexacred",
		Name:      "users_total",
		Help:      "Number of registered users.",
	})

	usersWalletLinked := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nexacred",
		Name:      "users_wallet_linked",
		Help:      "Number of users with a linked wallet.",
	})

	reg.MustRegister(requestCount)
	reg.MustRegister(requestDuration)
	reg.MustRegister(walletAuthCount)
	reg.MustRegister(usersTotal)
	reg.MustRegister(usersWalletLinked)

	return &Metrics{
		registry:          reg,
		requestCount:      requestCount,
		requestDuration:   requestDuration,
		walletAuthCount:   walletAuthCount,
		usersTotal:        usersTotal,
		usersWalletLinked: usersWalletLinked,
	}
}

// Registry returns the Prometheus registry used by this instrument set.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records one served HTTP request. The path should be the
// route template, not the raw URL, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordWalletAuth records one wallet authentication attempt.
func (m *Metrics) RecordWalletAuth(outcome string) {
	m.walletAuthCount.WithLabelValues(outcome).Inc()
}

// SetUserCounts updates the user population gauges.
func (m *Metrics) SetUserCounts(total, walletLinked int64) {
	m.usersTotal.Set(float64(total))
	m.usersWalletLinked.Set(float64(walletLinked))
}

// Handler returns an http.Handler serving the Prometheus text exposition
// format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
