// Package metrics exposes dietdesk counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dietdesk"

type Metrics struct {
	registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	droppedMessages prometheus.Counter
	backups         *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, so several instances can
// coexist in tests.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_mutations_total",
			Help:      "Successful record changes by entity and action.",
		}, []string{"entity", "action"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Swallowed collection storage failures by collection and operation.",
		}, []string{"collection", "op"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_rate_limited_total",
			Help:      "Export and print requests rejected by the rate limiter.",
		}),
		droppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_dropped_messages_total",
			Help:      "Change notifications dropped for slow websocket clients.",
		}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Snapshot backup runs by outcome.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.mutations,
		m.persistFailures,
		m.requests,
		m.requestDuration,
		m.rateLimited,
		m.droppedMessages,
		m.backups,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// PersistFailure counts a swallowed storage failure. Its signature matches
// the collection failure hook.
func (m *Metrics) PersistFailure(key, op string) {
	m.persistFailures.WithLabelValues(key, op).Inc()
}

func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

func (m *Metrics) DroppedMessage() {
	m.droppedMessages.Inc()
}

// BackupFinished counts a backup run; status is "completed" or "failed".
func (m *Metrics) BackupFinished(status string) {
	m.backups.WithLabelValues(status).Inc()
}

// WatchGauge registers a gauge read from fn at scrape time.
func (m *Metrics) WatchGauge(name, help string, fn func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Notifier is the record change sink, matching controller.Notifier.
type Notifier interface {
	Notify(entity, action string, id int64, notice string)
}

type countingNotifier struct {
	m    *Metrics
	next Notifier
}

func (c countingNotifier) Notify(entity, action string, id int64, notice string) {
	c.m.mutations.WithLabelValues(entity, action).Inc()
	c.next.Notify(entity, action, id, notice)
}

// CountingNotifier counts every notification before passing it to next.
func (m *Metrics) CountingNotifier(next Notifier) Notifier {
	return countingNotifier{m: m, next: next}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Instrument records request counts and latency labelled by the ServeMux
// pattern that matched, so ids in paths do not explode cardinality.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
