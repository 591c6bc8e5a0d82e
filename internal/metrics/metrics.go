package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	registrations   *prometheus.CounterVec
	compensations   *prometheus.CounterVec
	flagSubmissions *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Collectors that are
// already registered are reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctfboard",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ctfboard",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctfboard",
			Name:      "team_registrations_total",
			Help:      "Team registration outcomes",
		}, []string{"outcome"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctfboard",
			Name:      "registration_compensations_total",
			Help:      "Compensating actions run after failed registrations",
		}, []string{"result"}),
		flagSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctfboard",
			Name:      "flag_submissions_total",
			Help:      "Flag submissions by result",
		}, []string{"result"}),
	}

	m.requestTotal = register(reg, m.requestTotal)
	m.requestDuration = register(reg, m.requestDuration)
	m.registrations = register(reg, m.registrations)
	m.compensations = register(reg, m.compensations)
	m.flagSubmissions = register(reg, m.flagSubmissions)

	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

// ObserveRequest records one handled HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestTotal.WithLabelValues(method, route, code).Inc()
	m.requestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
}

// Registration records a registration outcome: success, field_error or general_error.
func (m *Metrics) Registration(outcome string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(outcome).Inc()
}

// Compensations records the results of an unwound registration.
func (m *Metrics) Compensations(succeeded, failed int) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues("succeeded").Add(float64(succeeded))
	m.compensations.WithLabelValues("failed").Add(float64(failed))
}

// FlagSubmission records a flag submission result.
func (m *Metrics) FlagSubmission(result string) {
	if m == nil {
		return
	}
	m.flagSubmissions.WithLabelValues(result).Inc()
}
