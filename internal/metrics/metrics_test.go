package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// gatherFamily は指定名のメトリクスファミリーを返す。見つからない場合はテストを失敗させる。
func gatherFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// labeledCounters はラベル値ごとのカウンタ値を返す（最初のラベルのみ）。
func labeledCounters(mf *dto.MetricFamily) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range mf.GetMetric() {
		out[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	return out
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordProductCache_CountsHitsAndMisses はキャッシュ参照がresultラベル付きで増加することを検証する。
func TestRecordProductCache_CountsHitsAndMisses(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProductCacheMiss()
	c.RecordProductCacheHit()
	c.RecordProductCacheHit()

	got := labeledCounters(gatherFamily(t, reg, "nutriscan_product_cache_lookups_total"))
	if got["hit"] != 2 || got["miss"] != 1 {
		t.Errorf("product_cache_lookups_total = %v, want hit=2 miss=1", got)
	}
}

// TestRecordNutritionView_IncrementsCounter は栄養画面カウンタが増加することを検証する。
func TestRecordNutritionView_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordNutritionView()

	val := gatherFamily(t, reg, "nutriscan_nutrition_views_total").GetMetric()[0].GetCounter().GetValue()
	if val != 1 {
		t.Errorf("nutrition_views_total = %v, want 1", val)
	}
}

// TestRecordHistoryRefresh_IncrementsCounterWithLabel は再取得の結果がラベル別に記録されることを検証する。
func TestRecordHistoryRefresh_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHistoryRefresh("success")
	c.RecordHistoryRefresh("success")
	c.RecordHistoryRefresh("error")
	c.RecordHistoryRefresh("superseded")

	got := labeledCounters(gatherFamily(t, reg, "nutriscan_history_refresh_total"))
	if len(got) != 3 {
		t.Fatalf("expected 3 label combinations, got %d", len(got))
	}
	if got["success"] != 2 || got["error"] != 1 || got["superseded"] != 1 {
		t.Errorf("history_refresh_total = %v", got)
	}
}

// TestRecordHistoryExport_CountsExportsAndRows はエクスポート回数と行数が記録されることを検証する。
func TestRecordHistoryExport_CountsExportsAndRows(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHistoryExport(10)
	c.RecordHistoryExport(5)

	exports := gatherFamily(t, reg, "nutriscan_history_exports_total").GetMetric()[0].GetCounter().GetValue()
	rows := gatherFamily(t, reg, "nutriscan_history_exported_rows_total").GetMetric()[0].GetCounter().GetValue()
	if exports != 2 {
		t.Errorf("history_exports_total = %v, want 2", exports)
	}
	if rows != 15 {
		t.Errorf("history_exported_rows_total = %v, want 15", rows)
	}
}

// TestRecordHTTPStatus_IncrementsCounterWithLabel はHTTPステータスカウンタがラベル付きで増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounterWithLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	got := labeledCounters(gatherFamily(t, reg, "nutriscan_http_status_total"))
	if len(got) != 2 {
		t.Fatalf("expected 2 label combinations, got %d", len(got))
	}
	if got["200"] != 2 {
		t.Errorf("http_status_total{status_code=200} = %v, want 2", got["200"])
	}
	if got["404"] != 1 {
		t.Errorf("http_status_total{status_code=404} = %v, want 1", got["404"])
	}
}

// TestRecordRequestLatency_ObservesHistogram はレイテンシのヒストグラムに値が記録されることを検証する。
func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(100 * time.Millisecond)
	c.RecordRequestLatency(2 * time.Second)

	h := gatherFamily(t, reg, "nutriscan_http_request_duration_seconds").GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 2 {
		t.Errorf("sample_count = %d, want 2", h.GetSampleCount())
	}
	// 合計は0.1 + 2.0 = 2.1秒
	if h.GetSampleSum() < 2.0 || h.GetSampleSum() > 2.2 {
		t.Errorf("sample_sum = %v, want ~2.1", h.GetSampleSum())
	}
}

// TestRecordProductsCleaned_IncrementsCounter は削除数が加算されることを検証する。
func TestRecordProductsCleaned_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProductsCleaned(3)
	c.RecordProductsCleaned(0)

	val := gatherFamily(t, reg, "nutriscan_products_cleaned_total").GetMetric()[0].GetCounter().GetValue()
	if val != 3 {
		t.Errorf("products_cleaned_total = %v, want 3", val)
	}
}

// TestMetricsHandler_ReturnsPrometheusFormat は/metricsエンドポイントがPrometheus形式で返すことを検証する。
func TestMetricsHandler_ReturnsPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	// いくつかのメトリクスを記録
	c.RecordProductCacheHit()
	c.RecordScanRecorded()
	c.RecordHTTPStatus(200)
	c.RecordRequestLatency(500 * time.Millisecond)
	c.RecordHistoryRefresh("success")

	handler := Handler(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	expectedMetrics := []string{
		"nutriscan_product_cache_lookups_total",
		"nutriscan_scans_recorded_total",
		"nutriscan_http_status_total",
		"nutriscan_http_request_duration_seconds",
		"nutriscan_history_refresh_total",
	}

	for _, metric := range expectedMetrics {
		if !strings.Contains(bodyStr, metric) {
			t.Errorf("response body does not contain %q", metric)
		}
	}
}

// TestCollector_ImplementsMetricsCollectorInterface はCollectorがMetricsCollectorインターフェースを実装することを検証する。
func TestCollector_ImplementsMetricsCollectorInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// TestMultipleCollectors_IndependentRegistries は異なるレジストリで独立に動作することを検証する。
func TestMultipleCollectors_IndependentRegistries(t *testing.T) {
	reg1 := prometheus.NewRegistry()
	reg2 := prometheus.NewRegistry()
	c1 := NewCollector(reg1)
	c2 := NewCollector(reg2)

	c1.RecordScanRecorded()
	c2.RecordScanRecorded()
	c2.RecordScanRecorded()

	val1 := gatherFamily(t, reg1, "nutriscan_scans_recorded_total").GetMetric()[0].GetCounter().GetValue()
	val2 := gatherFamily(t, reg2, "nutriscan_scans_recorded_total").GetMetric()[0].GetCounter().GetValue()

	if val1 != 1 {
		t.Errorf("reg1 scans_recorded = %v, want 1", val1)
	}
	if val2 != 2 {
		t.Errorf("reg2 scans_recorded = %v, want 2", val2)
	}
}
