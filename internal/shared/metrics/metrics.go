// Package metrics exposes the edge's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubportal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubportal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	sessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubportal_session_transitions_total",
			Help: "Session lifecycle transitions by kind",
		},
		[]string{"kind"},
	)

	tokenDecodeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clubportal_token_decode_failures_total",
			Help: "Tokens whose expiry claim could not be read",
		},
	)

	reconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubportal_comment_reconciliations_total",
			Help: "Comment forest reconciliations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	upstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubportal_upstream_calls_total",
			Help: "Calls to the club API by endpoint and outcome",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubportal_sessions_active",
			Help: "Profiles currently holding a session",
		},
	)

	realtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubportal_realtime_connections",
			Help: "Open realtime websocket connections",
		},
	)
)

// Session transition kinds
const (
	SessionLogin   = "login"
	SessionLogout  = "logout"
	SessionExpired = "expired"
	SessionRestore = "restore"
)

// RecordSessionTransition counts a session lifecycle step.
func RecordSessionTransition(kind string) {
	sessionTransitionsTotal.WithLabelValues(kind).Inc()
}

// AdjustActiveSessions moves the active session gauge by delta.
func AdjustActiveSessions(delta int) {
	activeSessions.Add(float64(delta))
}

// RecordTokenDecodeFailure counts a token whose payload could not be decoded.
func RecordTokenDecodeFailure() {
	tokenDecodeFailuresTotal.Inc()
}

// RecordReconciliation counts a forest edit. kind is "top_level" or "reply".
func RecordReconciliation(kind string, applied bool) {
	outcome := "applied"
	if !applied {
		outcome = "target_missing"
	}
	reconciliationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordUpstreamCall counts a call made to the club API.
func RecordUpstreamCall(method, endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamCallsTotal.WithLabelValues(method, endpoint, outcome).Inc()
}

// RealtimeConnected adjusts the open connection gauge by delta.
func RealtimeConnected(delta int) {
	realtimeConnections.Add(float64(delta))
}

// Middleware records request counts and durations keyed by the matched route.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
