package nutrition

import (
	"testing"

	"github.com/hitoshi/nutriscan/internal/model"
)

func level(l model.Level) *model.Level { return &l }

// TestClassify_SuppressedWhenAllAbsent は4つすべてにレベルがない場合に抑制されることを検証する。
func TestClassify_SuppressedWhenAllAbsent(t *testing.T) {
	n := nutriments(map[model.Nutrient]float64{model.NutrientFat: 10, model.NutrientSugars: 5})

	got := Classify(model.NutrientLevels{}, n, NewLocalizer("en"))
	if !got.Suppressed {
		t.Error("Suppressed should be true")
	}
	if len(got.Levels) != 0 {
		t.Errorf("len(Levels) = %d, want 0", len(got.Levels))
	}
}

// TestClassify_FixedOrder は固定順で存在するレベルのみを返すことを検証する。
func TestClassify_FixedOrder(t *testing.T) {
	tests := []struct {
		name   string
		levels model.NutrientLevels
		want   []model.Nutrient
	}{
		{
			name: "すべて",
			levels: model.NutrientLevels{
				Salt:         level(model.LevelLow),
				Sugars:       level(model.LevelHigh),
				SaturatedFat: level(model.LevelModerate),
				Fat:          level(model.LevelHigh),
			},
			want: []model.Nutrient{model.NutrientFat, model.NutrientSaturatedFat, model.NutrientSugars, model.NutrientSalt},
		},
		{
			name:   "食塩のみ",
			levels: model.NutrientLevels{Salt: level(model.LevelLow)},
			want:   []model.Nutrient{model.NutrientSalt},
		},
		{
			name:   "飽和脂肪酸と糖類",
			levels: model.NutrientLevels{Sugars: level(model.LevelLow), SaturatedFat: level(model.LevelHigh)},
			want:   []model.Nutrient{model.NutrientSaturatedFat, model.NutrientSugars},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.levels, nil, NewLocalizer("en"))
			if got.Suppressed {
				t.Fatal("Suppressed should be false")
			}
			if len(got.Levels) != len(tt.want) {
				t.Fatalf("len(Levels) = %d, want %d", len(got.Levels), len(tt.want))
			}
			for i, kind := range tt.want {
				if got.Levels[i].Nutrient != kind {
					t.Errorf("Levels[%d] = %q, want %q", i, got.Levels[i].Nutrient, kind)
				}
			}
		})
	}
}

// TestClassify_CarriesAmountAndLabels はレベルに量とラベルが付与されることを検証する。
func TestClassify_CarriesAmountAndLabels(t *testing.T) {
	n := nutriments(map[model.Nutrient]float64{model.NutrientFat: 31})
	got := Classify(model.NutrientLevels{
		Fat:  level(model.LevelHigh),
		Salt: level(model.LevelLow),
	}, n, NewLocalizer("en"))

	fat := got.Levels[0]
	if fat.Amount == nil || *fat.Amount != 31 || fat.Unit != "g" {
		t.Errorf("fat amount = %v %q, want 31 g", fat.Amount, fat.Unit)
	}
	if fat.LevelLabel != "in high quantity" {
		t.Errorf("fat.LevelLabel = %q, want %q", fat.LevelLabel, "in high quantity")
	}
	if fat.Label != "Fat" {
		t.Errorf("fat.Label = %q, want %q", fat.Label, "Fat")
	}

	salt := got.Levels[1]
	if salt.Amount != nil {
		t.Errorf("salt.Amount = %v, want nil for unreported amount", *salt.Amount)
	}
}
