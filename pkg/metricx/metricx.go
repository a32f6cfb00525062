// Package metricx holds the service's Prometheus collectors. A nil *Metrics
// is valid and records nothing.
package metricx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Abraxas-365/leadgate/pkg/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadgate"

type Metrics struct {
	gatherer prometheus.Gatherer

	otpIssued       *prometheus.CounterVec
	otpVerified     *prometheus.CounterVec
	leadSubmissions *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry, alongside the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWith(reg, reg)
}

// NewWith registers on reg and serves from g.
func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		gatherer: g,
		otpIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "otp_issued_total",
			Help: "OTP issuance attempts by result.",
		}, []string{"result"}),
		otpVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "otp_verified_total",
			Help: "OTP verification attempts by result.",
		}, []string{"result"}),
		leadSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "lead_submissions_total",
			Help: "Accepted form submissions by CRM outcome.",
		}, []string{"crm_status"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.otpIssued, m.otpVerified, m.leadSubmissions, m.httpRequests, m.httpDuration)
	return m
}

func (m *Metrics) OTPIssued(result string) {
	if m == nil {
		return
	}
	m.otpIssued.WithLabelValues(result).Inc()
}

func (m *Metrics) OTPVerified(result string) {
	if m == nil {
		return
	}
	m.otpVerified.WithLabelValues(result).Inc()
}

func (m *Metrics) LeadSubmitted(crmStatus string) {
	if m == nil {
		return
	}
	m.leadSubmissions.WithLabelValues(crmStatus).Inc()
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency by matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()

		// The app error handler runs after this returns, so derive the
		// status it will write.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			var xe *errx.Error
			switch {
			case errx.As(err, &xe):
				status = xe.Status()
			case errx.As(err, &fe):
				status = fe.Code
			}
		}
		route := c.Route().Path
		m.httpRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
