// Package nutrition は製品栄養画面のビューモデル組み立てを提供する。
//
// 栄養成分表の行構成は Families の宣言的な表で定義され、
// 行の組み立て（BuildRows）、栄養素レベル分類（Classify）、
// 重量指定の栄養計算（Calculate）はすべてこの表を参照する。
package nutrition

import "github.com/hitoshi/nutriscan/internal/model"

// HeaderPolicy はファミリーの見出し行を出す条件を表す。
type HeaderPolicy int

const (
	// HeaderNone は見出し行を出さず、メンバーを個別に判定する。
	HeaderNone HeaderPolicy = iota
	// HeaderWhenPrimary は主栄養素がある場合のみ見出しとメンバー行を出す。
	// 主栄養素がない場合はファミリー全体を出さない。
	HeaderWhenPrimary
	// HeaderWhenAnyMember はメンバーのいずれかがある場合に見出しを出す。
	HeaderWhenAnyMember
)

// Family は表示上の栄養素グループ。Membersの順序が表示順になる。
type Family struct {
	Name     string
	LabelKey string
	Header   HeaderPolicy
	Primary  model.Nutrient
	Members  []model.Nutrient
}

// Families は栄養成分表の表示順を定義する。
// energy → fat → carbohydrates → fiber → proteins → salt/sodium/alcohol → vitamins → minerals
var Families = []Family{
	{
		Name:    "energy",
		Header:  HeaderNone,
		Members: []model.Nutrient{model.NutrientEnergyKcal, model.NutrientEnergyKJ},
	},
	{
		Name:     "fat",
		LabelKey: string(model.NutrientFat),
		Header:   HeaderWhenPrimary,
		Primary:  model.NutrientFat,
		Members: []model.Nutrient{
			model.NutrientFat,
			model.NutrientSaturatedFat,
			model.NutrientMonounsaturatedFat,
			model.NutrientPolyunsaturatedFat,
			model.NutrientTransFat,
			model.NutrientCholesterol,
		},
	},
	{
		Name:     "carbohydrates",
		LabelKey: string(model.NutrientCarbohydrates),
		Header:   HeaderWhenPrimary,
		Primary:  model.NutrientCarbohydrates,
		Members: []model.Nutrient{
			model.NutrientCarbohydrates,
			model.NutrientSugars,
			model.NutrientSucrose,
			model.NutrientGlucose,
			model.NutrientFructose,
			model.NutrientLactose,
			model.NutrientMaltose,
		},
	},
	{
		Name:    "fiber",
		Header:  HeaderNone,
		Members: []model.Nutrient{model.NutrientFiber},
	},
	{
		Name:     "proteins",
		LabelKey: string(model.NutrientProteins),
		Header:   HeaderWhenPrimary,
		Primary:  model.NutrientProteins,
		Members: []model.Nutrient{
			model.NutrientProteins,
			model.NutrientCasein,
			model.NutrientSerumProteins,
			model.NutrientNucleotides,
		},
	},
	{
		Name:    "salt",
		Header:  HeaderNone,
		Members: []model.Nutrient{model.NutrientSalt, model.NutrientSodium, model.NutrientAlcohol},
	},
	{
		Name:     "vitamins",
		LabelKey: "group.vitamins",
		Header:   HeaderWhenAnyMember,
		Members: []model.Nutrient{
			model.NutrientVitaminA,
			model.NutrientBetaCarotene,
			model.NutrientVitaminD,
			model.NutrientVitaminE,
			model.NutrientVitaminK,
			model.NutrientVitaminC,
			model.NutrientVitaminB1,
			model.NutrientVitaminB2,
			model.NutrientVitaminPP,
			model.NutrientVitaminB6,
			model.NutrientVitaminB9,
			model.NutrientVitaminB12,
			model.NutrientBiotin,
			model.NutrientPantothenicAcid,
		},
	},
	{
		Name:     "minerals",
		LabelKey: "group.minerals",
		Header:   HeaderWhenAnyMember,
		Members: []model.Nutrient{
			model.NutrientSilica,
			model.NutrientBicarbonate,
			model.NutrientPotassium,
			model.NutrientChloride,
			model.NutrientCalcium,
			model.NutrientPhosphorus,
			model.NutrientIron,
			model.NutrientMagnesium,
			model.NutrientZinc,
			model.NutrientCopper,
			model.NutrientManganese,
			model.NutrientFluoride,
			model.NutrientSelenium,
			model.NutrientChromium,
			model.NutrientMolybdenum,
			model.NutrientIodine,
			model.NutrientCaffeine,
			model.NutrientTaurine,
		},
	},
}

// hasAnyMember はファミリーのメンバーが1つでも報告されているかを返す。
func (f Family) hasAnyMember(n model.Nutriments) bool {
	for _, m := range f.Members {
		if n.Has(m) {
			return true
		}
	}
	return false
}

// HasVitamins は製品にビタミン類の値が1つでもあるかを返す。
func HasVitamins(n model.Nutriments) bool {
	return familyByName("vitamins").hasAnyMember(n)
}

// HasMinerals は製品にミネラル類の値が1つでもあるかを返す。
func HasMinerals(n model.Nutriments) bool {
	return familyByName("minerals").hasAnyMember(n)
}

func familyByName(name string) Family {
	for _, f := range Families {
		if f.Name == name {
			return f
		}
	}
	return Family{}
}

// IsTableNutrient は栄養素がいずれかのファミリーに属するかを返す。
func IsTableNutrient(kind model.Nutrient) bool {
	for _, f := range Families {
		for _, m := range f.Members {
			if m == kind {
				return true
			}
		}
	}
	return false
}
