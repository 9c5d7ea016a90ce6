package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/nutriscan/internal/metrics"
	"github.com/hitoshi/nutriscan/internal/middleware"
	"github.com/hitoshi/nutriscan/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPMetrics       middleware.HTTPMetricsRecorder

	// ヘルスチェック・メトリクス
	HealthChecker HealthChecker
	Gatherer      prometheus.Gatherer

	// 製品・栄養画面
	NutritionService NutritionServiceInterface

	// 履歴画面
	HistorySessions HistorySessions
	ScanService     ScanServiceInterface
	Flavor          model.Flavor
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Metrics → Logging → SecurityHeaders → CORS → Device → RateLimit(General)
//
// /health と /metrics は端末識別とレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	productHandler := NewProductHandler(deps.NutritionService)
	historyHandler := NewHistoryHandler(deps.HistorySessions, deps.ScanService, deps.Flavor)

	// --- 端末識別不要のルート ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// --- 端末識別が必要なルート ---
	// ミドルウェアスタック: Device → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewDeviceMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 製品・栄養画面
		r.Route("/api/products/{barcode}", func(r chi.Router) {
			// PUT /api/products/{barcode} - 製品スナップショット登録（取り込み専用レート制限を追加）
			r.With(deps.RateLimiter.IngestMiddleware()).Put("/", productHandler.PutProduct)
			r.Get("/nutrition", productHandler.GetNutrition)
			r.Post("/calculate", productHandler.Calculate)
		})

		// 履歴画面
		r.Route("/api/history", func(r chi.Router) {
			r.Get("/", historyHandler.GetHistory)
			r.Post("/", historyHandler.RecordScan)
			r.Delete("/", historyHandler.ClearAll)
			r.Post("/refresh", historyHandler.Refresh)
			r.Put("/sort", historyHandler.SetSort)
			r.Get("/export", historyHandler.Export)
			r.Get("/events", historyHandler.Events)
			r.Delete("/{barcode}", historyHandler.DeleteEntry)
		})
	})

	return r
}
