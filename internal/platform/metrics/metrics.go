package metrics

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private Prometheus registry so several servers can coexist
// in one process (tests).
type Collector struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	authAttempts    *prometheus.CounterVec
	leaveDecisions  *prometheus.CounterVec
	leaveSubmitted  *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	jobs            *prometheus.CounterVec

	totalRequests   uint64
	errorRequests   uint64
	limitedRequests uint64
	totalDurationMs uint64
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavedesk_http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "leavedesk_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leavedesk_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavedesk_auth_attempts_total",
			Help: "Login, signup and password reset attempts by outcome.",
		}, []string{"form", "outcome"}),
		leaveDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavedesk_leave_decisions_total",
			Help: "Leave requests approved or rejected.",
		}, []string{"status"}),
		leaveSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavedesk_leave_submitted_total",
			Help: "Leave requests submitted by type.",
		}, []string{"type"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavedesk_analytics_refresh_total",
			Help: "Completed analytics refreshes by trigger.",
		}, []string{"source"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leavedesk_analytics_refresh_duration_seconds",
			Help:    "Analytics refresh duration.",
			Buckets: []float64{0.5, 1, 1.5, 2, 5, 10},
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "leavedesk_jobs_total",
			Help: "Background jobs by type and final status.",
		}, []string{"type", "status"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.requests, c.duration, c.rateLimited, c.authAttempts,
		c.leaveDecisions, c.leaveSubmitted, c.refreshes, c.refreshDuration, c.jobs,
	)
	return c
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(duration.Seconds())

	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == http.StatusTooManyRequests {
		atomic.AddUint64(&c.limitedRequests, 1)
		c.rateLimited.Inc()
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) AuthAttempt(form, outcome string) {
	c.authAttempts.WithLabelValues(form, outcome).Inc()
}

func (c *Collector) LeaveDecided(status string) {
	c.leaveDecisions.WithLabelValues(status).Inc()
}

func (c *Collector) LeaveSubmitted(leaveType string) {
	c.leaveSubmitted.WithLabelValues(leaveType).Inc()
}

func (c *Collector) AnalyticsRefreshed(source string, took time.Duration) {
	c.refreshes.WithLabelValues(source).Inc()
	c.refreshDuration.Observe(took.Seconds())
}

func (c *Collector) JobFinished(jobType, status string) {
	c.jobs.WithLabelValues(jobType, status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Snapshot is a compact summary for the readiness probe.
func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.limitedRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
	}
}
