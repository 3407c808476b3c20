package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal 上游请求总数计数器
	// Labels: endpoint (recordings/transcript), status (2xx/429/4xx/5xx/unreachable/no_credential)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_requests_total",
			Help: "Total number of upstream meetings API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// UpstreamRequestDuration 上游请求耗时直方图（秒）
	// Labels: endpoint (recordings/transcript)
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_upstream_request_duration_seconds",
			Help:    "Upstream meetings API request duration in seconds by endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// DrainsTotal 分页抓取总数计数器
	// Labels: outcome (complete/partial/aborted)
	DrainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_drains_total",
			Help: "Total number of recording list drains by outcome",
		},
		[]string{"outcome"},
	)

	// DrainPages 单次抓取页数直方图
	DrainPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_drain_pages",
			Help:    "Number of pages fetched per drain",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	// DrainDuration 单次抓取耗时直方图（秒），上界覆盖多次退避的慢抓取
	DrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_drain_duration_seconds",
			Help:    "Wall-clock duration of one drain in seconds, backoff waits included",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	// RateLimitRetriesTotal 429 退避重试总数计数器
	RateLimitRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_rate_limit_retries_total",
			Help: "Total number of backoff retries triggered by upstream 429 responses",
		},
	)

	// CacheEventsTotal 缓存事件计数器
	// Labels: event (hit/miss/clear)
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_events_total",
			Help: "Total number of meeting cache events by type",
		},
		[]string{"event"},
	)
)

// RecordUpstreamRequest 记录一次上游请求结果
func RecordUpstreamRequest(endpoint, status string) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// RecordUpstreamDuration 记录上游请求耗时（秒）
func RecordUpstreamDuration(endpoint string, durationSeconds float64) {
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordDrain 记录一次抓取的结果、页数和耗时（秒）
func RecordDrain(outcome string, pages int, durationSeconds float64) {
	DrainsTotal.WithLabelValues(outcome).Inc()
	DrainPages.Observe(float64(pages))
	DrainDuration.Observe(durationSeconds)
}

// RecordRateLimitRetry 记录一次 429 退避重试
func RecordRateLimitRetry() {
	RateLimitRetriesTotal.Inc()
}

// RecordCacheEvent 记录一次缓存事件
func RecordCacheEvent(event string) {
	CacheEventsTotal.WithLabelValues(event).Inc()
}
