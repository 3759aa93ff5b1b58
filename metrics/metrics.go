// Package metrics 定义推荐服务的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 召回
	RecallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_recall_duration_seconds",
			Help:    "Duration of a single recommendation method in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RecallItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recall_items_total",
			Help: "Total number of items returned per recommendation method",
		},
		[]string{"method"},
	)

	RecallDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_recall_degraded_total",
			Help: "Total number of degraded recommendation paths (empty result or fallback)",
		},
		[]string{"method", "reason"},
	)

	// 快照
	SnapshotBooks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_snapshot_books",
			Help: "Number of books in the active snapshot",
		},
	)

	SnapshotUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_snapshot_users",
			Help: "Number of users in the active rating matrix",
		},
	)

	SnapshotRatings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookrec_snapshot_ratings",
			Help: "Number of ratings in the active rating matrix",
		},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_refresh_total",
			Help: "Total number of snapshot refreshes",
		},
		[]string{"status"}, // "success", "error"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bookrec_refresh_duration_seconds",
			Help:    "Duration of snapshot refreshes in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// 关键词扩展
	KeywordCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_keyword_cache_total",
			Help: "Keyword expansion cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookrec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// RecordRecall 记录一次召回方法的耗时与条数。
func RecordRecall(method string, duration time.Duration, items int) {
	RecallDuration.WithLabelValues(method).Observe(duration.Seconds())
	RecallItems.WithLabelValues(method).Add(float64(items))
}

// RecordDegraded 记录一次降级路径。
func RecordDegraded(method, reason string) {
	RecallDegraded.WithLabelValues(method, reason).Inc()
}

// RecordRefresh 记录一次快照刷新。
func RecordRefresh(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	RefreshTotal.WithLabelValues(status).Inc()
	RefreshDuration.Observe(duration.Seconds())
}

// SetSnapshot 更新当前快照规模。
func SetSnapshot(books, users, ratings int) {
	SnapshotBooks.Set(float64(books))
	SnapshotUsers.Set(float64(users))
	SnapshotRatings.Set(float64(ratings))
}

// RecordAPIRequest 记录一次 API 请求。
func RecordAPIRequest(route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}
