package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rise_http_requests_total",
			Help: "Total number of handled HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rise_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rise_registrations_total",
			Help: "Total number of submitted RYLS registrations.",
		},
		[]string{"scholarship_type"},
	)
	PaymentTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rise_payment_transitions_total",
			Help: "Total number of payment status transitions.",
		},
		[]string{"type", "status"},
	)
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rise_uploads_total",
			Help: "Total number of upload attempts.",
		},
		[]string{"kind", "result"},
	)
	ExpiredPaymentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rise_payments_expired_total",
			Help: "Total number of pending payments expired by the sweeper.",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(RegistrationsTotal)
		prometheus.MustRegister(PaymentTransitionsTotal)
		prometheus.MustRegister(UploadsTotal)
		prometheus.MustRegister(ExpiredPaymentsTotal)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
