// Package model はドメインモデルを定義する。
package model

import "time"

// Nutrient は栄養素の種別を表す。値はOpen Food Factsのnutrimentsキーに一致する。
type Nutrient string

const (
	NutrientEnergyKcal Nutrient = "energy-kcal"
	NutrientEnergyKJ   Nutrient = "energy-kj"

	NutrientFat                Nutrient = "fat"
	NutrientSaturatedFat       Nutrient = "saturated-fat"
	NutrientMonounsaturatedFat Nutrient = "monounsaturated-fat"
	NutrientPolyunsaturatedFat Nutrient = "polyunsaturated-fat"
	NutrientTransFat           Nutrient = "trans-fat"
	NutrientCholesterol        Nutrient = "cholesterol"

	NutrientCarbohydrates Nutrient = "carbohydrates"
	NutrientSugars        Nutrient = "sugars"
	NutrientSucrose       Nutrient = "sucrose"
	NutrientGlucose       Nutrient = "glucose"
	NutrientFructose      Nutrient = "fructose"
	NutrientLactose       Nutrient = "lactose"
	NutrientMaltose       Nutrient = "maltose"

	NutrientFiber Nutrient = "fiber"

	NutrientProteins      Nutrient = "proteins"
	NutrientCasein        Nutrient = "casein"
	NutrientSerumProteins Nutrient = "serum-proteins"
	NutrientNucleotides   Nutrient = "nucleotides"

	NutrientSalt    Nutrient = "salt"
	NutrientSodium  Nutrient = "sodium"
	NutrientAlcohol Nutrient = "alcohol"

	NutrientVitaminA        Nutrient = "vitamin-a"
	NutrientBetaCarotene    Nutrient = "beta-carotene"
	NutrientVitaminD        Nutrient = "vitamin-d"
	NutrientVitaminE        Nutrient = "vitamin-e"
	NutrientVitaminK        Nutrient = "vitamin-k"
	NutrientVitaminC        Nutrient = "vitamin-c"
	NutrientVitaminB1       Nutrient = "vitamin-b1"
	NutrientVitaminB2       Nutrient = "vitamin-b2"
	NutrientVitaminPP       Nutrient = "vitamin-pp"
	NutrientVitaminB6       Nutrient = "vitamin-b6"
	NutrientVitaminB9       Nutrient = "vitamin-b9"
	NutrientVitaminB12      Nutrient = "vitamin-b12"
	NutrientBiotin          Nutrient = "biotin"
	NutrientPantothenicAcid Nutrient = "pantothenic-acid"

	NutrientSilica      Nutrient = "silica"
	NutrientBicarbonate Nutrient = "bicarbonate"
	NutrientPotassium   Nutrient = "potassium"
	NutrientChloride    Nutrient = "chloride"
	NutrientCalcium     Nutrient = "calcium"
	NutrientPhosphorus  Nutrient = "phosphorus"
	NutrientIron        Nutrient = "iron"
	NutrientMagnesium   Nutrient = "magnesium"
	NutrientZinc        Nutrient = "zinc"
	NutrientCopper      Nutrient = "copper"
	NutrientManganese   Nutrient = "manganese"
	NutrientFluoride    Nutrient = "fluoride"
	NutrientSelenium    Nutrient = "selenium"
	NutrientChromium    Nutrient = "chromium"
	NutrientMolybdenum  Nutrient = "molybdenum"
	NutrientIodine      Nutrient = "iodine"
	NutrientCaffeine    Nutrient = "caffeine"
	NutrientTaurine     Nutrient = "taurine"

	// NutrientCarbonFootprint は表の行にはならず、表示フラグのみに使う。
	NutrientCarbonFootprint Nutrient = "carbon-footprint"
)

// Modifier は栄養値の修飾子（「未満」「約」など）を表す。
type Modifier string

const (
	ModifierNone          Modifier = ""
	ModifierLessThan      Modifier = "<"
	ModifierGreaterThan   Modifier = ">"
	ModifierApproximately Modifier = "~"
	ModifierAtMost        Modifier = "<="
	ModifierAtLeast       Modifier = ">="
)

// NutrientValue は100g（または100ml）あたりの栄養値を表す。
// Amountがnilの場合は「未報告」を意味し、0とは区別する。
type NutrientValue struct {
	Nutrient Nutrient `json:"nutrient"`
	Amount   *float64 `json:"amount"`
	Unit     string   `json:"unit"`
	Modifier Modifier `json:"modifier,omitempty"`
}

// Nutriments は栄養素種別ごとの栄養値マップ。
type Nutriments map[Nutrient]NutrientValue

// Get は指定種別の栄養値を返す。キーが存在しないか値が未報告の場合はfalseを返す。
func (n Nutriments) Get(kind Nutrient) (NutrientValue, bool) {
	v, ok := n[kind]
	if !ok || v.Amount == nil {
		return NutrientValue{}, false
	}
	return v, true
}

// Has は指定種別の栄養値が報告されているかを返す。
func (n Nutriments) Has(kind Nutrient) bool {
	_, ok := n.Get(kind)
	return ok
}

// Level は栄養素レベルの定性評価を表す。
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// NutrientLevels は製品分類データ由来の4栄養素のレベル。nilは分類なし。
type NutrientLevels struct {
	Fat          *Level `json:"fat,omitempty"`
	SaturatedFat *Level `json:"saturated-fat,omitempty"`
	Sugars       *Level `json:"sugars,omitempty"`
	Salt         *Level `json:"salt,omitempty"`
}

// 製品のstates_tagsで使われるタグ。
const (
	StateTagCategoriesToBeCompleted     = "en:categories-to-be-completed"
	StateTagNutritionFactsToBeCompleted = "en:nutrition-facts-to-be-completed"
)

// Product はスキャン対象製品のスナップショットを表す。
// 製品データ提供元から受け取った値を読み取り専用で扱う。
type Product struct {
	Barcode         string
	Name            string
	Brand           string
	NutritionGrade  string // "a".."e"、未分類は空文字
	ServingSize     string // 例: "30 g"、"250 ml"
	PerVolume       bool   // trueのとき栄養値は100mlあたり
	NoNutritionData bool
	Nutriments      Nutriments
	NutrientLevels  NutrientLevels

	// NutritionImageURLs は言語コードごとの栄養成分表示画像URL。
	NutritionImageURLs map[string]string
	DefaultLanguage    string
	ThumbnailURL       string
	StatesTags         []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasStateTag は製品が指定のstates_tagを持つかを返す。
func (p *Product) HasStateTag(tag string) bool {
	for _, t := range p.StatesTags {
		if t == tag {
			return true
		}
	}
	return false
}

// NutritionImageURL は指定言語の栄養成分表示画像URLを返す。
// 指定言語がない場合は製品のデフォルト言語にフォールバックする。
func (p *Product) NutritionImageURL(lang string) string {
	if u := p.NutritionImageURLs[lang]; u != "" {
		return u
	}
	return p.NutritionImageURLs[p.DefaultLanguage]
}
