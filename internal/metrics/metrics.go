// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認可、HTTPミドルウェア、ワーカーから利用する。
type MetricsCollector interface {
	RecordDecision(resource, operation, outcome string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordRateLimited(limitType string)
	RecordTrialsExpired(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authzDecisions *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	rateLimited    *prometheus.CounterVec
	trialsExpired  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmatch_authz_decisions_total",
			Help: "リソース・操作・結果別の認可判定数",
		}, []string{"resource", "operation", "outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmatch_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reelmatch_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reelmatch_rate_limited_total",
			Help: "レート制限で拒否されたリクエスト数",
		}, []string{"limit_type"}),
		trialsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reelmatch_brand_trials_expired_total",
			Help: "試用期間切れに移行したブランド数",
		}),
	}

	reg.MustRegister(
		c.authzDecisions,
		c.httpStatus,
		c.requestLatency,
		c.rateLimited,
		c.trialsExpired,
	)

	return c
}

// RecordDecision は認可判定の結果を記録する。outcomeは allow / UNAUTHENTICATED / FORBIDDEN。
func (c *Collector) RecordDecision(resource, operation, outcome string) {
	c.authzDecisions.WithLabelValues(resource, operation, outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited(limitType string) {
	c.rateLimited.WithLabelValues(limitType).Inc()
}

// RecordTrialsExpired は試用期間切れに移行したブランド数を記録する。
func (c *Collector) RecordTrialsExpired(count int) {
	if count <= 0 {
		return
	}
	c.trialsExpired.Add(float64(count))
}

// Handler はPrometheus形式でメトリクスを返すHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
