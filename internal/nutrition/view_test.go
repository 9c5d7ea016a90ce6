package nutrition

import (
	"testing"

	"github.com/hitoshi/nutriscan/internal/model"
)

func sampleProduct() *model.Product {
	return &model.Product{
		Barcode:        "3017620422003",
		Name:           "Nutella",
		Brand:          "Ferrero",
		NutritionGrade: "e",
		ServingSize:    "15 g",
		Nutriments: nutriments(map[model.Nutrient]float64{
			model.NutrientEnergyKcal: 539,
			model.NutrientFat:        30.9,
			model.NutrientSugars:     56.3,
		}),
		NutrientLevels: model.NutrientLevels{
			Fat:    level(model.LevelHigh),
			Sugars: level(model.LevelHigh),
		},
		NutritionImageURLs: map[string]string{
			"en": "https://images.example.org/nutrition_en.jpg",
			"fr": "https://images.example.org/nutrition_fr.jpg",
		},
		DefaultLanguage: "fr",
	}
}

// TestPromptFor はstates_tagsから促しの種類が決まることを検証する。
func TestPromptFor(t *testing.T) {
	tests := []struct {
		name   string
		tags   []string
		noData bool
		want   PromptKind
	}{
		{"タグなし", nil, false, PromptNone},
		{"カテゴリのみ", []string{model.StateTagCategoriesToBeCompleted}, false, PromptCategory},
		{"栄養のみ", []string{model.StateTagNutritionFactsToBeCompleted}, false, PromptNutrition},
		{"両方", []string{model.StateTagCategoriesToBeCompleted, model.StateTagNutritionFactsToBeCompleted}, false, PromptNutritionAndCategory},
		{"栄養データなしなら栄養の促しは出さない", []string{model.StateTagNutritionFactsToBeCompleted}, true, PromptNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &model.Product{StatesTags: tt.tags, NoNutritionData: tt.noData}
			if got := PromptFor(p); got != tt.want {
				t.Errorf("PromptFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestResolveImage は画像参照が1つに決まることを検証する。
func TestResolveImage(t *testing.T) {
	p := sampleProduct()

	tests := []struct {
		name       string
		lang       string
		pending    string
		lowBattery bool
		want       ImageRef
	}{
		{
			name: "要求言語の画像",
			lang: "en",
			want: ImageRef{Source: ImageRemote, Ref: "https://images.example.org/nutrition_en.jpg", Load: true},
		},
		{
			name: "画像のない言語はデフォルト言語",
			lang: "de",
			want: ImageRef{Source: ImageRemote, Ref: "https://images.example.org/nutrition_fr.jpg", Load: true},
		},
		{
			name:       "省電力モードでは読み込まない",
			lang:       "en",
			lowBattery: true,
			want:       ImageRef{Source: ImageRemote, Ref: "https://images.example.org/nutrition_en.jpg", Load: false},
		},
		{
			name:       "オフライン画像が優先される",
			lang:       "en",
			pending:    "/data/pending/nutrition.jpg",
			lowBattery: true,
			want:       ImageRef{Source: ImageLocal, Ref: "/data/pending/nutrition.jpg", Load: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveImage(p, tt.lang, tt.pending, tt.lowBattery); got != tt.want {
				t.Errorf("ResolveImage() = %+v, want %+v", got, tt.want)
			}
		})
	}

	empty := &model.Product{}
	if got := ResolveImage(empty, "en", "", false); got.Source != ImageNone {
		t.Errorf("ResolveImage(no images) = %+v, want none", got)
	}
}

// TestBuildView は栄養画面のビューモデル全体を検証する。
func TestBuildView(t *testing.T) {
	p := sampleProduct()
	links := Links{NutriScoreURL: "https://example.org/nutriscore", NutrientInfoURL: "https://example.org/info"}

	v := BuildView(p, ViewOptions{Language: "en", VolumeUnit: VolumeUnitOunce}, NewLocalizer("en"), links)

	if !v.ShowNutritionData || !v.ShowTable {
		t.Errorf("ShowNutritionData=%v ShowTable=%v, want both true", v.ShowNutritionData, v.ShowTable)
	}
	if v.BasisLabel != "per 100 g" {
		t.Errorf("BasisLabel = %q", v.BasisLabel)
	}
	if v.GradeBadge != "e" {
		t.Errorf("GradeBadge = %q, want e", v.GradeBadge)
	}
	if !v.NutriScoreLinkVisible || v.NutriScoreURL != links.NutriScoreURL {
		t.Errorf("NutriScore link = %v %q", v.NutriScoreLinkVisible, v.NutriScoreURL)
	}
	if v.ServingDisplay == nil || v.ServingDisplay.Unit != "oz" {
		t.Fatalf("ServingDisplay = %+v, want oz", v.ServingDisplay)
	}
	if v.ServingText != "Serving size: 0.53 oz" {
		t.Errorf("ServingText = %q", v.ServingText)
	}
	if v.Levels.Suppressed || len(v.Levels.Levels) != 2 {
		t.Errorf("Levels = %+v", v.Levels)
	}
	if v.CarbonFootprintVisible {
		t.Error("CarbonFootprintVisible should be false")
	}
	if v.Image.Source != ImageRemote || !v.Image.Load {
		t.Errorf("Image = %+v", v.Image)
	}
	if v.AddPhotoPrompt {
		t.Error("AddPhotoPrompt should be false when an image exists")
	}
	if !v.CalculatorShown {
		t.Error("CalculatorShown should be true")
	}
}

// TestBuildView_SuppressedLevelsHideBadge はレベルがない場合にグレードバッジを出さないことを検証する。
func TestBuildView_SuppressedLevelsHideBadge(t *testing.T) {
	p := sampleProduct()
	p.NutrientLevels = model.NutrientLevels{}

	v := BuildView(p, ViewOptions{}, NewLocalizer("en"), Links{})
	if !v.Levels.Suppressed {
		t.Error("Levels should be suppressed")
	}
	if v.GradeBadge != "" {
		t.Errorf("GradeBadge = %q, want empty", v.GradeBadge)
	}
	// リンクの表示はグレードの有無のみで決まる
	if !v.NutriScoreLinkVisible {
		t.Error("NutriScoreLinkVisible should stay true")
	}
}

// TestBuildView_NoNutritionData は栄養データなしの製品で栄養情報を隠すことを検証する。
func TestBuildView_NoNutritionData(t *testing.T) {
	p := sampleProduct()
	p.NoNutritionData = true
	p.StatesTags = []string{model.StateTagNutritionFactsToBeCompleted}

	v := BuildView(p, ViewOptions{Language: "en"}, NewLocalizer("en"), Links{})
	if v.ShowNutritionData || v.ShowTable || v.CalculatorShown {
		t.Errorf("nutrition data should be hidden: %+v", v)
	}
	if v.GradeBadge != "" {
		t.Errorf("GradeBadge = %q, want empty", v.GradeBadge)
	}
	if v.Image.Source != ImageNone {
		t.Errorf("Image = %+v, want none", v.Image)
	}
	if v.Prompt != PromptNone {
		t.Errorf("Prompt = %q, want none", v.Prompt)
	}
}

// TestBuildView_NoGrade はグレードのない製品でリンクを出さないことを検証する。
func TestBuildView_NoGrade(t *testing.T) {
	p := sampleProduct()
	p.NutritionGrade = ""
	p.NutritionImageURLs = nil

	v := BuildView(p, ViewOptions{}, NewLocalizer("en"), Links{NutriScoreURL: "https://example.org/nutriscore"})
	if v.NutriScoreLinkVisible || v.NutriScoreURL != "" {
		t.Errorf("NutriScore link should be hidden: %v %q", v.NutriScoreLinkVisible, v.NutriScoreURL)
	}
	if !v.AddPhotoPrompt {
		t.Error("AddPhotoPrompt should be true without an image")
	}
}

// TestBuildView_UnparseableServingWithOunces は解析できない1食分でも例外なく値を省略することを検証する。
func TestBuildView_UnparseableServingWithOunces(t *testing.T) {
	p := sampleProduct()
	p.ServingSize = "unparsable-xyz"

	v := BuildView(p, ViewOptions{VolumeUnit: VolumeUnitOunce}, NewLocalizer("en"), Links{})
	if v.ServingDisplay != nil || v.ServingText != "" {
		t.Errorf("serving conversion should be absent: %+v %q", v.ServingDisplay, v.ServingText)
	}
	for _, r := range v.Rows {
		if r.PerServing != nil {
			t.Errorf("%s PerServing = %v, want nil", r.Nutrient, *r.PerServing)
		}
	}
}
