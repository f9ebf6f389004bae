package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	LessonCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brolearn_lesson_completions_total",
			Help: "Lesson completions recorded, split by first completion or repeat",
		},
		[]string{"first"},
	)

	XPGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brolearn_xp_granted_total",
			Help: "XP granted to users by source",
		},
		[]string{"source"},
	)

	StreakTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brolearn_streak_transitions_total",
			Help: "Streak engine outcomes",
		},
		[]string{"transition"},
	)

	AchievementUnlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brolearn_achievement_unlocks_total",
			Help: "Achievements unlocked by type",
		},
		[]string{"type"},
	)

	LedgerConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "brolearn_progress_ledger_conflicts_total",
			Help: "Optimistic version conflicts retried by the progress ledger",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			LessonCompletions,
			XPGranted,
			StreakTransitions,
			AchievementUnlocks,
			LedgerConflicts,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
