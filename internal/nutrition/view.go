package nutrition

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/hitoshi/nutriscan/internal/model"
)

// PromptKind は栄養画面に出す情報追加の促し。
type PromptKind string

const (
	PromptNone                 PromptKind = "none"
	PromptNutrition            PromptKind = "nutrition"
	PromptCategory             PromptKind = "category"
	PromptNutritionAndCategory PromptKind = "nutrition_and_category"
)

// ImageSource は栄養成分画像の参照元。
type ImageSource string

const (
	ImageNone   ImageSource = "none"
	ImageRemote ImageSource = "remote"
	ImageLocal  ImageSource = "local"
)

// ImageRef は画像ローダーに渡す参照。Loadがfalseの場合は読み込まない。
type ImageRef struct {
	Source ImageSource `json:"source"`
	Ref    string      `json:"ref,omitempty"`
	Load   bool        `json:"load"`
}

// ViewOptions は栄養画面の表示設定。
type ViewOptions struct {
	Language         string
	VolumeUnit       VolumeUnit
	LowBattery       bool
	PendingImagePath string // オフライン保存中のアップロード画像のローカルパス
}

// Links は栄養画面から開く外部ページのURL。
type Links struct {
	NutriScoreURL   string
	NutrientInfoURL string
}

// View は栄養画面のビューモデル。
type View struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Language string `json:"language"`

	Prompt            PromptKind `json:"prompt"`
	ShowNutritionData bool       `json:"show_nutrition_data"`

	PerVolume       bool         `json:"per_volume"`
	BasisLabel      string       `json:"basis_label"`
	ServingSize     string       `json:"serving_size,omitempty"`
	ServingDisplay  *Measurement `json:"serving_display,omitempty"`
	ServingText     string       `json:"serving_text,omitempty"`
	Rows            []Row        `json:"rows"`
	ShowTable       bool         `json:"show_table"`
	Levels          LevelsResult `json:"levels"`
	CalculatorShown bool         `json:"calculator_shown"`

	GradeBadge            string `json:"grade_badge,omitempty"`
	NutriScoreLinkVisible bool   `json:"nutriscore_link_visible"`
	NutriScoreURL         string `json:"nutriscore_url,omitempty"`
	NutrientInfoURL       string `json:"nutrient_info_url,omitempty"`

	CarbonFootprintVisible bool     `json:"carbon_footprint_visible"`
	Image                  ImageRef `json:"image"`
	AddPhotoPrompt         bool     `json:"add_photo_prompt"`
}

// PromptFor は製品のstates_tagsと栄養データ有無から促しの種類を決める。
// 栄養データなしの製品には栄養の促しを出さない。
func PromptFor(p *model.Product) PromptKind {
	category := p.HasStateTag(model.StateTagCategoriesToBeCompleted)
	nutrition := !p.NoNutritionData && p.HasStateTag(model.StateTagNutritionFactsToBeCompleted)

	switch {
	case nutrition && category:
		return PromptNutritionAndCategory
	case nutrition:
		return PromptNutrition
	case category:
		return PromptCategory
	default:
		return PromptNone
	}
}

// ResolveImage は栄養成分画像の参照を1つに決める。
// オフライン保存中の画像があればそれを優先し、なければ言語別の画像URLを使う。
// 省電力モードではリモート画像を読み込まない。
func ResolveImage(p *model.Product, lang, pendingPath string, lowBattery bool) ImageRef {
	if pendingPath != "" {
		return ImageRef{Source: ImageLocal, Ref: pendingPath, Load: true}
	}
	if u := p.NutritionImageURL(lang); u != "" {
		return ImageRef{Source: ImageRemote, Ref: u, Load: !lowBattery}
	}
	return ImageRef{Source: ImageNone}
}

// BuildView は製品スナップショットから栄養画面のビューモデルを組み立てる。
func BuildView(p *model.Product, opts ViewOptions, loc Localizer, links Links) *View {
	lang := loc.Language().String()
	v := &View{
		Barcode:           p.Barcode,
		Name:              p.Name,
		Language:          lang,
		Prompt:            PromptFor(p),
		ShowNutritionData: !p.NoNutritionData,
		PerVolume:         p.PerVolume,
		ServingSize:       p.ServingSize,
		NutrientInfoURL:   links.NutrientInfoURL,
	}

	if p.PerVolume {
		v.BasisLabel = loc.Text("per.100ml")
	} else {
		v.BasisLabel = loc.Text("per.100g")
	}

	if p.ServingSize != "" {
		if m, ok := ConvertServing(p.ServingSize, opts.VolumeUnit); ok {
			v.ServingDisplay = &m
			v.ServingText = fmt.Sprintf("%s %s %s", loc.Text("serving.size"), loc.FormatAmount(m.Value), m.Unit)
		}
	}

	v.Rows = NewRowBuilder(loc, p.ServingSize).Build(p.Nutriments, p.PerVolume)
	v.ShowTable = v.ShowNutritionData && ShowTable(v.Rows)
	v.Levels = Classify(p.NutrientLevels, p.Nutriments, loc)
	v.CarbonFootprintVisible = p.Nutriments.Has(model.NutrientCarbonFootprint)

	grade := strings.ToLower(p.NutritionGrade)
	v.NutriScoreLinkVisible = grade != ""
	if v.NutriScoreLinkVisible {
		v.NutriScoreURL = links.NutriScoreURL
	}

	if !v.ShowNutritionData {
		v.Image = ImageRef{Source: ImageNone}
		return v
	}

	v.CalculatorShown = true
	if !v.Levels.Suppressed {
		v.GradeBadge = grade
	}
	v.Image = ResolveImage(p, imageLanguage(opts.Language, lang), opts.PendingImagePath, opts.LowBattery)
	v.AddPhotoPrompt = v.Image.Source == ImageNone
	return v
}

// imageLanguage は画像URLの選択に使う言語コードを返す。
// 表示文字列が未対応の言語でも、画像は要求された言語を優先する。
func imageLanguage(requested, fallback string) string {
	if tag, err := language.Parse(requested); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return base.String()
		}
	}
	return fallback
}
