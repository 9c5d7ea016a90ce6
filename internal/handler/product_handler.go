package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/language"

	"github.com/hitoshi/nutriscan/internal/model"
	"github.com/hitoshi/nutriscan/internal/nutrition"
)

// NutritionServiceInterface は製品ハンドラーが必要とするサービスインターフェース。
type NutritionServiceInterface interface {
	// SaveProduct は製品スナップショットを登録または更新する。
	SaveProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	// View は栄養画面のビューモデルを組み立てる。
	View(ctx context.Context, barcode string, opts nutrition.ViewOptions) (*nutrition.View, error)
	// Calculate は製品の栄養値を指定重量あたりに換算する。
	Calculate(ctx context.Context, barcode, weight, unit, lang string) (*nutrition.Calculation, error)
}

// ProductHandler は製品スナップショットと栄養画面のHTTPハンドラー。
type ProductHandler struct {
	service NutritionServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service NutritionServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// productRequest は製品スナップショット登録リクエストのボディ。
type productRequest struct {
	Name               string                                 `json:"name"`
	Brand              string                                 `json:"brand"`
	NutritionGrade     string                                 `json:"nutrition_grade"`
	ServingSize        string                                 `json:"serving_size"`
	PerVolume          bool                                   `json:"per_volume"`
	NoNutritionData    bool                                   `json:"no_nutrition_data"`
	Nutriments         map[model.Nutrient]model.NutrientValue `json:"nutriments"`
	NutrientLevels     model.NutrientLevels                   `json:"nutrient_levels"`
	NutritionImageURLs map[string]string                      `json:"nutrition_image_urls"`
	DefaultLanguage    string                                 `json:"default_language"`
	ThumbnailURL       string                                 `json:"thumbnail_url"`
	StatesTags         []string                               `json:"states_tags"`
}

// productResponse は製品スナップショットのAPIレスポンス。
type productResponse struct {
	Barcode            string                                 `json:"barcode"`
	Name               string                                 `json:"name"`
	Brand              string                                 `json:"brand"`
	NutritionGrade     string                                 `json:"nutrition_grade,omitempty"`
	ServingSize        string                                 `json:"serving_size,omitempty"`
	PerVolume          bool                                   `json:"per_volume"`
	NoNutritionData    bool                                   `json:"no_nutrition_data"`
	Nutriments         map[model.Nutrient]model.NutrientValue `json:"nutriments"`
	NutrientLevels     model.NutrientLevels                   `json:"nutrient_levels"`
	NutritionImageURLs map[string]string                      `json:"nutrition_image_urls,omitempty"`
	DefaultLanguage    string                                 `json:"default_language,omitempty"`
	ThumbnailURL       string                                 `json:"thumbnail_url,omitempty"`
	StatesTags         []string                               `json:"states_tags"`
	UpdatedAt          time.Time                              `json:"updated_at"`
}

// calculateRequest は栄養計算リクエストのボディ。
type calculateRequest struct {
	Weight string `json:"weight"`
	Unit   string `json:"unit"`
	Lang   string `json:"lang"`
}

// PutProduct は製品スナップショットを登録または更新する。
// PUT /api/products/{barcode}
func (h *ProductHandler) PutProduct(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	var req productRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p := &model.Product{
		Barcode:            barcode,
		Name:               req.Name,
		Brand:              req.Brand,
		NutritionGrade:     req.NutritionGrade,
		ServingSize:        req.ServingSize,
		PerVolume:          req.PerVolume,
		NoNutritionData:    req.NoNutritionData,
		Nutriments:         model.Nutriments(req.Nutriments),
		NutrientLevels:     req.NutrientLevels,
		NutritionImageURLs: req.NutritionImageURLs,
		DefaultLanguage:    req.DefaultLanguage,
		ThumbnailURL:       req.ThumbnailURL,
		StatesTags:         req.StatesTags,
	}
	if p.Nutriments == nil {
		p.Nutriments = model.Nutriments{}
	}

	saved, err := h.service.SaveProduct(r.Context(), p)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(saved))
}

// GetNutrition は栄養画面のビューモデルを返す。
// GET /api/products/{barcode}/nutrition?unit=oz&lang=fr&low_battery=true&pending_image=/path
func (h *ProductHandler) GetNutrition(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")
	q := r.URL.Query()

	opts := nutrition.ViewOptions{
		Language:         requestLanguage(r),
		PendingImagePath: q.Get("pending_image"),
	}

	if raw := q.Get("unit"); raw != "" {
		unit, ok := nutrition.ParseVolumeUnit(raw)
		if !ok {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUnitError(raw))
			return
		}
		opts.VolumeUnit = unit
	}

	if raw := q.Get("low_battery"); raw != "" {
		lowBattery, err := strconv.ParseBool(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("low_batteryはtrueまたはfalseで指定してください"))
			return
		}
		opts.LowBattery = lowBattery
	}

	view, err := h.service.View(r.Context(), barcode, opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Calculate は指定重量あたりの栄養値を返す。
// POST /api/products/{barcode}/calculate
func (h *ProductHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	var req calculateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Lang == "" {
		req.Lang = requestLanguage(r)
	}

	calc, err := h.service.Calculate(r.Context(), barcode, req.Weight, req.Unit, req.Lang)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calc)
}

// requestLanguage はlangクエリ、なければAccept-Languageの最優先言語を返す。
// どちらもない場合は空文字（サービスのデフォルト言語）を返す。
func requestLanguage(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return ""
	}
	return tags[0].String()
}

// toProductResponse はドメインのProductをレスポンス型に変換する。
func toProductResponse(p *model.Product) productResponse {
	tags := p.StatesTags
	if tags == nil {
		tags = []string{}
	}
	return productResponse{
		Barcode:            p.Barcode,
		Name:               p.Name,
		Brand:              p.Brand,
		NutritionGrade:     p.NutritionGrade,
		ServingSize:        p.ServingSize,
		PerVolume:          p.PerVolume,
		NoNutritionData:    p.NoNutritionData,
		Nutriments:         p.Nutriments,
		NutrientLevels:     p.NutrientLevels,
		NutritionImageURLs: p.NutritionImageURLs,
		DefaultLanguage:    p.DefaultLanguage,
		ThumbnailURL:       p.ThumbnailURL,
		StatesTags:         tags,
		UpdatedAt:          p.UpdatedAt,
	}
}
