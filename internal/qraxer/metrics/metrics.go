// Package metrics exposes Prometheus instruments for Odoo calls, QR
// validation, logins and check-ins.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ithesk/qraxer/pkg/odoorpc"
	"github.com/ithesk/qraxer/pkg/qrsig"
)

const namespace = "qraxer"

// Metrics owns its registry so tests and multiple instances never collide
// on the global one.
type Metrics struct {
	Registry *prometheus.Registry

	rpcCalls      *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
	reauths       *prometheus.CounterVec
	qrValidations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	checkins      prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "odoo_calls_total",
			Help:      "Odoo call_kw requests by proxy, model, method and outcome.",
		}, []string{"proxy", "model", "method", "outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "odoo_call_duration_seconds",
			Help:      "Latency of Odoo call_kw requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"proxy", "model", "method"}),
		reauths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "odoo_reauthentications_total",
			Help:      "Sessions re-established after Odoo reported them expired.",
		}, []string{"proxy"}),
		qrValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qr_validations_total",
			Help:      "QR codes validated, by mode and result.",
		}, []string{"mode", "result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		checkins: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Repairs checked in by technicians.",
		}),
	}

	m.Registry.MustRegister(
		m.rpcCalls, m.rpcDuration, m.reauths, m.qrValidations, m.logins, m.checkins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveCall implements odoorpc.Observer.
func (m *Metrics) ObserveCall(proxy, model, method string, elapsed time.Duration, err error) {
	m.rpcCalls.WithLabelValues(proxy, model, method, outcome(err)).Inc()
	m.rpcDuration.WithLabelValues(proxy, model, method).Observe(elapsed.Seconds())
}

// ObserveReauth implements odoorpc.Observer.
func (m *Metrics) ObserveReauth(proxy string) {
	m.reauths.WithLabelValues(proxy).Inc()
}

// ObserveQR counts a validation result. Rejections are labelled with
// their reason.
func (m *Metrics) ObserveQR(res qrsig.Result) {
	if res.Valid {
		m.qrValidations.WithLabelValues(string(res.Mode), "valid").Inc()
		return
	}
	m.qrValidations.WithLabelValues("", string(res.Reason)).Inc()
}

func (m *Metrics) ObserveLogin(ok bool) {
	if ok {
		m.logins.WithLabelValues("success").Inc()
		return
	}
	m.logins.WithLabelValues("failure").Inc()
}

func (m *Metrics) ObserveCheckin() { m.checkins.Inc() }

func outcome(err error) string {
	var remote *odoorpc.RemoteError
	var transport *odoorpc.TransportError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &remote):
		return "remote_error"
	case errors.As(err, &transport):
		return "transport_error"
	default:
		return "error"
	}
}

var _ odoorpc.Observer = (*Metrics)(nil)
