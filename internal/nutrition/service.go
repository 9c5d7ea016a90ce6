package nutrition

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hitoshi/nutriscan/internal/model"
	"github.com/hitoshi/nutriscan/internal/repository"
	"github.com/hitoshi/nutriscan/internal/security"
)

// MetricsRecorder は栄養画面まわりのメトリクス記録先。
type MetricsRecorder interface {
	RecordProductCacheHit()
	RecordProductCacheMiss()
	RecordNutritionView()
}

type nopMetrics struct{}

func (nopMetrics) RecordProductCacheHit()  {}
func (nopMetrics) RecordProductCacheMiss() {}
func (nopMetrics) RecordNutritionView()    {}

// ServiceConfig はServiceの設定値。
type ServiceConfig struct {
	CacheTTL          time.Duration
	NutriScoreURL     string
	NutrientInfoURL   string
	DefaultVolumeUnit VolumeUnit
	DefaultLanguage   string
}

// Service は製品スナップショットの登録と栄養画面ビューモデルの組み立てを行う。
// 製品はバーコードをキーにTTLキャッシュされる。
type Service struct {
	products  repository.ProductRepository
	sanitizer security.ContentSanitizerService
	cache     *gocache.Cache
	cfg       ServiceConfig
	metrics   MetricsRecorder
	logger    *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。metricsがnilの場合は記録しない。
func NewService(
	products repository.ProductRepository,
	sanitizer security.ContentSanitizerService,
	cfg ServiceConfig,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.DefaultVolumeUnit == "" {
		cfg.DefaultVolumeUnit = VolumeUnitLiter
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		products:  products,
		sanitizer: sanitizer,
		cache:     gocache.New(cfg.CacheTTL, cfg.CacheTTL*2),
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Product は指定バーコードの製品を返す。キャッシュにない場合はリポジトリから取得する。
// 製品が存在しない場合はPRODUCT_NOT_FOUNDエラーを返す。
func (s *Service) Product(ctx context.Context, barcode string) (*model.Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, model.NewInvalidBarcodeError(barcode)
	}

	if cached, ok := s.cache.Get(barcode); ok {
		s.metrics.RecordProductCacheHit()
		return cached.(*model.Product), nil
	}
	s.metrics.RecordProductCacheMiss()

	p, err := s.products.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("製品の取得に失敗: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError(barcode)
	}

	s.cache.Set(barcode, p, gocache.DefaultExpiration)
	return p, nil
}

// SaveProduct は製品スナップショットを登録または更新し、キャッシュを無効化する。
// 製品名・ブランド名はサニタイズし、画像URLはhttp(s)のみを保持する。
func (s *Service) SaveProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	p.Barcode = strings.TrimSpace(p.Barcode)
	if p.Barcode == "" {
		return nil, model.NewInvalidBarcodeError(p.Barcode)
	}
	p.NutritionGrade = strings.ToLower(strings.TrimSpace(p.NutritionGrade))
	if p.NutritionGrade != "" && !isValidGrade(p.NutritionGrade) {
		return nil, model.NewInvalidProductError(fmt.Sprintf("nutrition_gradeは a〜e で指定してください: %s", p.NutritionGrade))
	}
	for kind, v := range p.Nutriments {
		if v.Nutrient == "" {
			v.Nutrient = kind
			p.Nutriments[kind] = v
		}
		if v.Nutrient != kind {
			return nil, model.NewInvalidProductError(fmt.Sprintf("栄養素の種別が一致しません: %s", kind))
		}
	}

	p.Name = s.sanitizer.Sanitize(p.Name)
	p.Brand = s.sanitizer.Sanitize(p.Brand)
	p.ServingSize = s.sanitizer.Sanitize(p.ServingSize)
	p.ThumbnailURL = s.sanitizer.SanitizeURL(p.ThumbnailURL)
	for lang, u := range p.NutritionImageURLs {
		if clean := s.sanitizer.SanitizeURL(u); clean != "" {
			p.NutritionImageURLs[lang] = clean
		} else {
			delete(p.NutritionImageURLs, lang)
		}
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.products.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("製品の保存に失敗: %w", err)
	}
	s.Invalidate(p.Barcode)

	s.logger.Info("product saved",
		slog.String("barcode", p.Barcode),
		slog.Int("nutrient_count", len(p.Nutriments)),
	)
	return p, nil
}

// Invalidate は指定バーコードのキャッシュを破棄する。
func (s *Service) Invalidate(barcode string) {
	s.cache.Delete(barcode)
}

// View は栄養画面のビューモデルを組み立てる。
func (s *Service) View(ctx context.Context, barcode string, opts ViewOptions) (*View, error) {
	p, err := s.Product(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if opts.VolumeUnit == "" {
		opts.VolumeUnit = s.cfg.DefaultVolumeUnit
	}
	if opts.Language == "" {
		opts.Language = s.cfg.DefaultLanguage
	}

	v := BuildView(p, opts, NewLocalizer(opts.Language), Links{
		NutriScoreURL:   s.cfg.NutriScoreURL,
		NutrientInfoURL: s.cfg.NutrientInfoURL,
	})
	s.metrics.RecordNutritionView()
	return v, nil
}

// Calculate は製品の栄養値を指定重量あたりに換算する。
func (s *Service) Calculate(ctx context.Context, barcode, weight, unit, lang string) (*Calculation, error) {
	p, err := s.Product(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if lang == "" {
		lang = s.cfg.DefaultLanguage
	}
	return Calculate(p.Nutriments, p.PerVolume, weight, unit, NewLocalizer(lang))
}

func isValidGrade(g string) bool {
	switch g {
	case "a", "b", "c", "d", "e":
		return true
	default:
		return false
	}
}
