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
// サービス層・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	RecordProductCacheHit()
	RecordProductCacheMiss()
	RecordNutritionView()
	RecordHistoryRefresh(outcome string)
	RecordHistoryExport(rows int)
	RecordScanRecorded()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordProductsCleaned(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	productCache    *prometheus.CounterVec
	nutritionViews  prometheus.Counter
	historyRefresh  *prometheus.CounterVec
	historyExports  prometheus.Counter
	exportedRows    prometheus.Counter
	scansRecorded   prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	productsCleaned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		productCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutriscan_product_cache_lookups_total",
			Help: "製品キャッシュの参照数（result=hit|miss）",
		}, []string{"result"}),
		nutritionViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutriscan_nutrition_views_total",
			Help: "栄養画面ビューモデルの生成数",
		}),
		historyRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutriscan_history_refresh_total",
			Help: "履歴再取得の結果別の回数",
		}, []string{"outcome"}),
		historyExports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutriscan_history_exports_total",
			Help: "履歴CSVエクスポートの成功数",
		}),
		exportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutriscan_history_exported_rows_total",
			Help: "エクスポートされた履歴の合計行数",
		}),
		scansRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutriscan_scans_recorded_total",
			Help: "記録されたスキャンの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutriscan_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutriscan_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		productsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutriscan_products_cleaned_total",
			Help: "クリーンアップで削除された製品スナップショットの合計数",
		}),
	}

	reg.MustRegister(
		c.productCache,
		c.nutritionViews,
		c.historyRefresh,
		c.historyExports,
		c.exportedRows,
		c.scansRecorded,
		c.httpStatus,
		c.requestLatency,
		c.productsCleaned,
	)

	return c
}

// RecordProductCacheHit は製品キャッシュのヒットを記録する。
func (c *Collector) RecordProductCacheHit() {
	c.productCache.WithLabelValues("hit").Inc()
}

// RecordProductCacheMiss は製品キャッシュのミスを記録する。
func (c *Collector) RecordProductCacheMiss() {
	c.productCache.WithLabelValues("miss").Inc()
}

// RecordNutritionView は栄養画面の表示を記録する。
func (c *Collector) RecordNutritionView() {
	c.nutritionViews.Inc()
}

// RecordHistoryRefresh は履歴再取得の結果（success, error, superseded, cancelled）を記録する。
func (c *Collector) RecordHistoryRefresh(outcome string) {
	c.historyRefresh.WithLabelValues(outcome).Inc()
}

// RecordHistoryExport はCSVエクスポートと行数を記録する。
func (c *Collector) RecordHistoryExport(rows int) {
	c.historyExports.Inc()
	c.exportedRows.Add(float64(rows))
}

// RecordScanRecorded はスキャン記録を記録する。
func (c *Collector) RecordScanRecorded() {
	c.scansRecorded.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はHTTPリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordProductsCleaned はクリーンアップで削除した製品数を記録する。
func (c *Collector) RecordProductsCleaned(count int) {
	c.productsCleaned.Add(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
