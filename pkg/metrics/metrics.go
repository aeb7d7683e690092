package metrics

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upnext_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upnext_notifications_created_total",
			Help: "Notifications written by the due-date scan",
		},
		[]string{"type"},
	)

	NotificationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upnext_notification_runs_total",
			Help: "Due-date scans by outcome",
		},
		[]string{"outcome"}, // ok, partial, skipped, failed
	)

	NotificationRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upnext_notification_run_duration_seconds",
			Help:    "Duration of a full due-date scan including project status refresh",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	// Task status rewrites made by project status cascades
	CascadeTaskChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upnext_cascade_task_changes_total",
			Help: "Task statuses rewritten by project status cascades",
		},
		[]string{"project_status"},
	)

	ProjectStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upnext_project_status_changes_total",
			Help: "Project status changes by target status and trigger",
		},
		[]string{"status", "trigger"}, // trigger: manual, auto
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementNotificationCreated(typ string, n int) {
	if n > 0 {
		NotificationsCreated.WithLabelValues(typ).Add(float64(n))
	}
}

func IncrementNotificationRun(outcome string) {
	NotificationRuns.WithLabelValues(outcome).Inc()
}

func RecordNotificationRun(duration time.Duration) {
	NotificationRunDuration.Observe(duration.Seconds())
}

func IncrementCascadeChanges(projectStatus string, n int) {
	if n > 0 {
		CascadeTaskChanges.WithLabelValues(projectStatus).Add(float64(n))
	}
}

func IncrementProjectStatusChange(status, trigger string) {
	ProjectStatusChanges.WithLabelValues(status, trigger).Inc()
}

var startTime = time.Now()

// RegisterDBStats exposes the connection pool of db and the process uptime.
// Registering twice is not an error.
func RegisterDBStats(db *sql.DB) error {
	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "upnext_uptime_seconds",
		Help: "Time since server start in seconds",
	}, func() float64 { return time.Since(startTime).Seconds() })

	for _, c := range []prometheus.Collector{collectors.NewDBStatsCollector(db, "upnext"), uptime} {
		if err := prometheus.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return err
			}
		}
	}
	return nil
}

// Middleware records request latency labelled by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
