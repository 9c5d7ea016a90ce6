package nutrition

import "github.com/hitoshi/nutriscan/internal/model"

// LevelItem は栄養素レベル表示の1行を表す。
type LevelItem struct {
	Nutrient   model.Nutrient `json:"nutrient"`
	Label      string         `json:"label"`
	Level      model.Level    `json:"level"`
	LevelLabel string         `json:"level_label"`
	Amount     *float64       `json:"amount,omitempty"`
	Unit       string         `json:"unit,omitempty"`
}

// LevelsResult は栄養素レベル分類の結果。
// Suppressedがtrueの場合、レベル表示とグレードバッジの両方を非表示にする。
type LevelsResult struct {
	Suppressed bool        `json:"suppressed"`
	Levels     []LevelItem `json:"levels"`
}

// Classify は脂質・飽和脂肪酸・糖類・食塩の順にレベルを持つ栄養素を抽出する。
// 4つすべてにレベルがない場合はSuppressedを返す。
func Classify(levels model.NutrientLevels, n model.Nutriments, loc Localizer) LevelsResult {
	tracked := []struct {
		kind  model.Nutrient
		level *model.Level
	}{
		{model.NutrientFat, levels.Fat},
		{model.NutrientSaturatedFat, levels.SaturatedFat},
		{model.NutrientSugars, levels.Sugars},
		{model.NutrientSalt, levels.Salt},
	}

	items := make([]LevelItem, 0, len(tracked))
	for _, t := range tracked {
		if t.level == nil {
			continue
		}
		item := LevelItem{
			Nutrient:   t.kind,
			Label:      loc.Text(string(t.kind)),
			Level:      *t.level,
			LevelLabel: loc.Text("level." + string(*t.level)),
		}
		if v, ok := n.Get(t.kind); ok {
			amount := *v.Amount
			item.Amount = &amount
			item.Unit = v.Unit
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return LevelsResult{Suppressed: true, Levels: []LevelItem{}}
	}
	return LevelsResult{Levels: items}
}
