package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockHTTPMetrics struct {
	statuses  []int
	latencies []time.Duration
}

func (m *mockHTTPMetrics) RecordHTTPStatus(statusCode int) {
	m.statuses = append(m.statuses, statusCode)
}

func (m *mockHTTPMetrics) RecordRequestLatency(d time.Duration) {
	m.latencies = append(m.latencies, d)
}

func TestMetricsMiddleware_RecordsStatusAndLatency(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{"暗黙の200", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) }, http.StatusOK},
		{"明示的な404", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }, http.StatusNotFound},
		{"書き込みなし", func(w http.ResponseWriter, r *http.Request) {}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockHTTPMetrics{}
			handler := NewMetricsMiddleware(m)(tt.handler)

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/history", nil))

			if len(m.statuses) != 1 || m.statuses[0] != tt.want {
				t.Errorf("statuses = %v, want [%d]", m.statuses, tt.want)
			}
			if len(m.latencies) != 1 || m.latencies[0] < 0 {
				t.Errorf("latencies = %v, want one non-negative value", m.latencies)
			}
		})
	}
}
