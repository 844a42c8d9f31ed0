// Package metrics provides Prometheus instrumentation for the TrustGate service.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustgate",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trustgate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ProfileSubmissionsTotal counts accepted profile submissions.
	ProfileSubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trustgate",
		Name:      "profile_submissions_total",
		Help:      "Total profile submissions accepted.",
	})

	// OTPIssuedTotal counts OTP codes issued.
	OTPIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trustgate",
		Name:      "otp_issued_total",
		Help:      "Total OTP codes issued.",
	})

	// OTPVerificationsTotal counts verification attempts by result (ok, failed).
	OTPVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustgate",
			Name:      "otp_verifications_total",
			Help:      "Total OTP verification attempts by result.",
		},
		[]string{"result"},
	)

	// EvaluationsTotal counts completed risk evaluations by tier.
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustgate",
			Name:      "evaluations_total",
			Help:      "Total risk evaluations completed by tier.",
		},
		[]string{"tier"},
	)

	// EvaluationScore observes the distribution of computed risk scores.
	EvaluationScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trustgate",
		Name:      "evaluation_score",
		Help:      "Distribution of computed risk scores.",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// CaseDecisionsTotal counts compliance decisions by action.
	CaseDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trustgate",
			Name:      "case_decisions_total",
			Help:      "Total compliance decisions applied by action.",
		},
		[]string{"action"},
	)

	// EscalatedCasesOpen tracks cases currently awaiting a decision.
	EscalatedCasesOpen = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate",
		Name:      "escalated_cases_open",
		Help:      "Number of escalated cases awaiting a compliance decision.",
	})

	// ActiveWebSocketClients tracks connected WebSocket clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trustgate",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected WebSocket clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// DBWaitCount tracks the total number of connections waited for.
	DBWaitCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate", Name: "db_wait_count_total",
		Help: "Total number of connections waited for.",
	})
	// DBWaitDuration tracks total time waited for connections.
	DBWaitDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate", Name: "db_wait_duration_seconds_total",
		Help: "Total time waited for connections in seconds.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trustgate", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ProfileSubmissionsTotal,
		OTPIssuedTotal,
		OTPVerificationsTotal,
		EvaluationsTotal,
		EvaluationScore,
		CaseDecisionsTotal,
		EscalatedCasesOpen,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		DBWaitCount,
		DBWaitDuration,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			DBWaitCount.Set(float64(stats.WaitCount))
			DBWaitDuration.Set(stats.WaitDuration.Seconds())
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Uses route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
