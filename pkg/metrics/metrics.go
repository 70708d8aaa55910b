package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "table"},
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the configured threshold",
		},
		[]string{"sql"},
	)

	// MQ 消费延迟（毫秒）
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	// 项目操作计数
	ProjectOperationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "project_operation_count",
			Help: "Total number of project operations",
		},
		[]string{"operation", "status"}, // operation: create, update, delete, move, toggle, config
	)

	// 配置校验失败计数
	ValidationFailureCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "config_validation_failure_count",
			Help: "Total number of rejected configuration updates",
		},
		[]string{"field"},
	)

	// 认证计数
	AuthAttemptCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempt_count",
			Help: "Total number of authentication attempts",
		},
		[]string{"mode", "strategy", "status"},
	)

	// 公共目录缓存命中
	DirectoryCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_cache_count",
			Help: "Directory cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	// Outbox 发布计数
	OutboxPublishCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbox_publish_count",
			Help: "Total number of outbox events published",
		},
		[]string{"routing_key", "status"},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// IncrementSlowQuery 记录一次慢查询
func IncrementSlowQuery(sql string, duration time.Duration) {
	SlowQueryCount.WithLabelValues(sql).Inc()
	DBQueryDuration.WithLabelValues("slow", "unknown").Observe(duration.Seconds())
}

// RecordMQConsumeLatency 记录 MQ 消费延迟
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// IncrementProjectOperation 增加项目操作计数
func IncrementProjectOperation(operation, status string) {
	ProjectOperationCount.WithLabelValues(operation, status).Inc()
}

// IncrementValidationFailure 增加校验失败计数
func IncrementValidationFailure(field string) {
	ValidationFailureCount.WithLabelValues(field).Inc()
}

// IncrementAuthAttempt 增加认证计数
func IncrementAuthAttempt(mode, strategy, status string) {
	AuthAttemptCount.WithLabelValues(mode, strategy, status).Inc()
}

// IncrementDirectoryCache 记录缓存命中情况
func IncrementDirectoryCache(result string) {
	DirectoryCacheCount.WithLabelValues(result).Inc()
}

// IncrementOutboxPublish 记录 outbox 发布结果
func IncrementOutboxPublish(routingKey, status string) {
	OutboxPublishCount.WithLabelValues(routingKey, status).Inc()
}
