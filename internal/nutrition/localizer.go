package nutrition

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/text/number"

	"github.com/hitoshi/nutriscan/internal/model"
)

// Localizer は表示文字列と数値書式を提供する。
type Localizer interface {
	// Text はキーに対応する表示文字列を返す。未定義のキーはキー自身を返す。
	Text(key string) string
	// FormatAmount は数値をロケールに合わせて小数2桁までで書式化する。
	FormatAmount(v float64) string
	// Language は実際に使用している言語タグを返す。
	Language() language.Tag
}

// supportedLanguages の先頭がフォールバック言語となる。
var supportedLanguages = []language.Tag{language.English, language.French, language.Japanese}

var languageMatcher = language.NewMatcher(supportedLanguages)

var labelCatalog = buildCatalog()

// translations は言語ごとの表示文字列。英語は全キーを網羅する。
var translations = map[language.Tag]map[string]string{
	language.English: {
		string(model.NutrientEnergyKcal):         "Energy (kcal)",
		string(model.NutrientEnergyKJ):           "Energy (kJ)",
		string(model.NutrientFat):                "Fat",
		string(model.NutrientSaturatedFat):       "Saturated fat",
		string(model.NutrientMonounsaturatedFat): "Monounsaturated fat",
		string(model.NutrientPolyunsaturatedFat): "Polyunsaturated fat",
		string(model.NutrientTransFat):           "Trans fat",
		string(model.NutrientCholesterol):        "Cholesterol",
		string(model.NutrientCarbohydrates):      "Carbohydrate",
		string(model.NutrientSugars):             "Sugars",
		string(model.NutrientSucrose):            "Sucrose",
		string(model.NutrientGlucose):            "Glucose",
		string(model.NutrientFructose):           "Fructose",
		string(model.NutrientLactose):            "Lactose",
		string(model.NutrientMaltose):            "Maltose",
		string(model.NutrientFiber):              "Fiber",
		string(model.NutrientProteins):           "Proteins",
		string(model.NutrientCasein):             "Casein",
		string(model.NutrientSerumProteins):      "Serum proteins",
		string(model.NutrientNucleotides):        "Nucleotides",
		string(model.NutrientSalt):               "Salt",
		string(model.NutrientSodium):             "Sodium",
		string(model.NutrientAlcohol):            "Alcohol",
		string(model.NutrientVitaminA):           "Vitamin A",
		string(model.NutrientBetaCarotene):       "Beta carotene",
		string(model.NutrientVitaminD):           "Vitamin D",
		string(model.NutrientVitaminE):           "Vitamin E",
		string(model.NutrientVitaminK):           "Vitamin K",
		string(model.NutrientVitaminC):           "Vitamin C",
		string(model.NutrientVitaminB1):          "Vitamin B1 (Thiamin)",
		string(model.NutrientVitaminB2):          "Vitamin B2 (Riboflavin)",
		string(model.NutrientVitaminPP):          "Vitamin B3 / PP (Niacin)",
		string(model.NutrientVitaminB6):          "Vitamin B6 (Pyridoxin)",
		string(model.NutrientVitaminB9):          "Vitamin B9 (Folic acid)",
		string(model.NutrientVitaminB12):         "Vitamin B12 (Cobalamin)",
		string(model.NutrientBiotin):             "Biotin",
		string(model.NutrientPantothenicAcid):    "Pantothenic acid",
		string(model.NutrientSilica):             "Silica",
		string(model.NutrientBicarbonate):        "Bicarbonate",
		string(model.NutrientPotassium):          "Potassium",
		string(model.NutrientChloride):           "Chloride",
		string(model.NutrientCalcium):            "Calcium",
		string(model.NutrientPhosphorus):         "Phosphorus",
		string(model.NutrientIron):               "Iron",
		string(model.NutrientMagnesium):          "Magnesium",
		string(model.NutrientZinc):               "Zinc",
		string(model.NutrientCopper):             "Copper",
		string(model.NutrientManganese):          "Manganese",
		string(model.NutrientFluoride):           "Fluoride",
		string(model.NutrientSelenium):           "Selenium",
		string(model.NutrientChromium):           "Chromium",
		string(model.NutrientMolybdenum):         "Molybdenum",
		string(model.NutrientIodine):             "Iodine",
		string(model.NutrientCaffeine):           "Caffeine",
		string(model.NutrientTaurine):            "Taurine",
		"group.vitamins":                         "Vitamins",
		"group.minerals":                         "Minerals",
		"level.low":                              "in low quantity",
		"level.moderate":                         "in moderate quantity",
		"level.high":                             "in high quantity",
		"per.100g":                               "per 100 g",
		"per.100ml":                              "per 100 ml",
		"serving.size":                           "Serving size:",
	},
	language.French: {
		string(model.NutrientEnergyKcal):    "Énergie (kcal)",
		string(model.NutrientEnergyKJ):      "Énergie (kJ)",
		string(model.NutrientFat):           "Matières grasses",
		string(model.NutrientSaturatedFat):  "Acides gras saturés",
		string(model.NutrientTransFat):      "Acides gras trans",
		string(model.NutrientCholesterol):   "Cholestérol",
		string(model.NutrientCarbohydrates): "Glucides",
		string(model.NutrientSugars):        "Sucres",
		string(model.NutrientFiber):         "Fibres alimentaires",
		string(model.NutrientProteins):      "Protéines",
		string(model.NutrientSalt):          "Sel",
		string(model.NutrientSodium):        "Sodium",
		string(model.NutrientAlcohol):       "Alcool",
		string(model.NutrientCalcium):       "Calcium",
		string(model.NutrientIron):          "Fer",
		"group.vitamins":                    "Vitamines",
		"group.minerals":                    "Minéraux",
		"level.low":                         "en faible quantité",
		"level.moderate":                    "en quantité modérée",
		"level.high":                        "en quantité élevée",
		"per.100g":                          "pour 100 g",
		"per.100ml":                         "pour 100 ml",
		"serving.size":                      "Portion :",
	},
	language.Japanese: {
		string(model.NutrientEnergyKcal):    "エネルギー (kcal)",
		string(model.NutrientEnergyKJ):      "エネルギー (kJ)",
		string(model.NutrientFat):           "脂質",
		string(model.NutrientSaturatedFat):  "飽和脂肪酸",
		string(model.NutrientTransFat):      "トランス脂肪酸",
		string(model.NutrientCholesterol):   "コレステロール",
		string(model.NutrientCarbohydrates): "炭水化物",
		string(model.NutrientSugars):        "糖類",
		string(model.NutrientFiber):         "食物繊維",
		string(model.NutrientProteins):      "たんぱく質",
		string(model.NutrientSalt):          "食塩相当量",
		string(model.NutrientSodium):        "ナトリウム",
		string(model.NutrientAlcohol):       "アルコール",
		string(model.NutrientCalcium):       "カルシウム",
		string(model.NutrientIron):          "鉄",
		"group.vitamins":                    "ビタミン",
		"group.minerals":                    "ミネラル",
		"level.low":                         "少ない",
		"level.moderate":                    "普通",
		"level.high":                        "多い",
		"per.100g":                          "100gあたり",
		"per.100ml":                         "100mlあたり",
		"serving.size":                      "1食分:",
	},
}

// buildCatalog はtranslationsからx/textのメッセージカタログを構築する。
func buildCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("nutrition: invalid catalog entry %s/%s: %v", tag, key, err))
			}
		}
	}
	return b
}

// catalogLocalizer はx/textのmessage.Printerを使うLocalizerの実装。
type catalogLocalizer struct {
	tag      language.Tag
	printer  *message.Printer
	fallback *message.Printer
}

// NewLocalizer は言語コード（例: "fr", "ja-JP"）に最も近い対応言語のLocalizerを返す。
// 空文字や解析できない値の場合は英語を使う。
func NewLocalizer(lang string) Localizer {
	tag := language.English
	if lang != "" {
		if requested, err := language.Parse(lang); err == nil {
			_, idx, _ := languageMatcher.Match(requested)
			tag = supportedLanguages[idx]
		}
	}
	return &catalogLocalizer{
		tag:      tag,
		printer:  message.NewPrinter(tag, message.Catalog(labelCatalog)),
		fallback: message.NewPrinter(language.English, message.Catalog(labelCatalog)),
	}
}

// Text はキーに対応する表示文字列を返す。
// 対象言語に訳がない場合は英語、英語にもない場合はキー自身を返す。
func (l *catalogLocalizer) Text(key string) string {
	if msgs, ok := translations[l.tag]; ok {
		if _, ok := msgs[key]; ok {
			return l.printer.Sprintf(key)
		}
	}
	if _, ok := translations[language.English][key]; ok {
		return l.fallback.Sprintf(key)
	}
	return key
}

// FormatAmount は数値を小数2桁までで書式化する。
func (l *catalogLocalizer) FormatAmount(v float64) string {
	return l.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Language は実際に使用している言語タグを返す。
func (l *catalogLocalizer) Language() language.Tag {
	return l.tag
}
