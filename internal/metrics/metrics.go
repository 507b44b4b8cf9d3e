package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/anonto42/socialhub/backend/internal/apperrors"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "socialhub",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "socialhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "socialhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	contentActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "socialhub",
			Subsystem: "content",
			Name:      "actions_total",
			Help:      "Content mutations by collection and action.",
		},
		[]string{"kind", "action"},
	)

	timelineSources = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "socialhub",
			Subsystem: "feed",
			Name:      "timeline_sources",
			Help:      "Number of owners fetched per timeline assembly.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	notificationsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "socialhub",
			Subsystem: "notifications",
			Name:      "dropped_total",
			Help:      "Best-effort notifications that failed to persist.",
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		contentActions,
		timelineSources,
		notificationsDropped,
	)
}

// Middleware records request counts and latencies labelled by route template.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = apperrors.KindOf(err).HTTPStatus()
				}
			}
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			httpRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler exposes the registry for scraping.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordContentAction(kind, action string) {
	contentActions.WithLabelValues(kind, action).Inc()
}

func RecordTimelineSources(n int) {
	timelineSources.Observe(float64(n))
}

func RecordNotificationDropped(notificationType string) {
	notificationsDropped.WithLabelValues(notificationType).Inc()
}
