// Package metrics owns the server's Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds collectors registered on a private registry, so tests can
// build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	signIns      *prometheus.CounterVec
	phoneCodes   *prometheus.CounterVec
	emailActions *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_grpc_requests_total",
			Help: "gRPC requests by method and status code",
		}, []string{"method", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophauth_grpc_request_duration_seconds",
			Help:    "gRPC request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_sign_ins_total",
			Help: "Sign-in attempts by provider and outcome",
		}, []string{"provider", "result"}),
		phoneCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_phone_codes_total",
			Help: "Phone verification requests by outcome",
		}, []string{"result"}),
		emailActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_email_verifications_total",
			Help: "Email verification links sent and confirmed",
		}, []string{"action"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests, m.rpcDuration, m.signIns, m.phoneCodes, m.emailActions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	m.rpcRequests.WithLabelValues(method, code).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveSignIn(provider string, err error) {
	m.signIns.WithLabelValues(provider, Result(err)).Inc()
}

func (m *Metrics) ObservePhoneCode(result string) {
	m.phoneCodes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveEmail(action string) {
	m.emailActions.WithLabelValues(action).Inc()
}

var results = []struct {
	err   error
	label string
}{
	{common.ErrValidation, "validation"},
	{common.ErrAccountCollision, "collision"},
	{common.ErrInvalidCredential, "invalid_credential"},
	{common.ErrProviderUnavailable, "unavailable"},
	{common.ErrProviderDisabled, "disabled"},
	{common.ErrQuotaExceeded, "quota"},
	{common.ErrInvalidPhoneNumber, "invalid_phone"},
}

// Result turns an error into a low-cardinality label.
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	for _, r := range results {
		if errors.Is(err, r.err) {
			return r.label
		}
	}
	return "error"
}
