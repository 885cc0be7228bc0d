// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cfp"

var registry = prometheus.NewRegistry()

var auto = promauto.With(registry)

var (
	HTTPRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	TasksEnqueued = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "enqueued_total",
		Help:      "Background tasks submitted to the queue.",
	}, []string{"type"})

	TaskEnqueueErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "enqueue_errors_total",
		Help:      "Background tasks that could not be submitted.",
	}, []string{"type"})

	TasksProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "processed_total",
		Help:      "Background tasks processed by type and outcome.",
	}, []string{"type", "status"})

	TaskDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tasks",
		Name:      "duration_seconds",
		Help:      "Background task processing time.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	ScheduleReleases = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "schedule",
		Name:      "releases_total",
		Help:      "Schedules released.",
	})

	ScoresRecalculated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "review",
		Name:      "scores_recalculated_total",
		Help:      "Review aggregate scores rewritten by recalculation runs.",
	})

	AnnouncementsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "announcement",
		Name:      "published_total",
		Help:      "Announcements published for the first time.",
	})

	MetricsSnapshots = auto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "analytics",
		Name:      "snapshots_total",
		Help:      "Per-event daily metrics rows written.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func Registry() *prometheus.Registry {
	return registry
}

func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
