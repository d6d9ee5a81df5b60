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
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// Schedule 读取计数
	ScheduleReadCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_reads_total",
			Help: "Total number of schedule view reads",
		},
		[]string{"cache"}, // cache: hit, miss
	)

	// Schedule 变更计数
	ScheduleMutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_mutations_total",
			Help: "Total number of schedule mutations",
		},
		[]string{"operation"}, // create_phase, create_activity, update_activity, delete_activity
	)

	// 慢查询计数
	SlowQueryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_slow_query_total",
			Help: "Total number of slow database queries",
		},
		[]string{"query"},
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

// IncrementScheduleRead 增加 schedule 读取计数
func IncrementScheduleRead(cache string) {
	ScheduleReadCount.WithLabelValues(cache).Inc()
}

// IncrementScheduleMutation 增加 schedule 变更计数
func IncrementScheduleMutation(operation string) {
	ScheduleMutationCount.WithLabelValues(operation).Inc()
}

// IncrementSlowQuery 增加慢查询计数
func IncrementSlowQuery(query string, _ time.Duration) {
	SlowQueryCount.WithLabelValues(query).Inc()
}
