package nutrition

import (
	"math"
	"strconv"
	"strings"

	"github.com/hitoshi/nutriscan/internal/model"
)

// Calculation は指定重量あたりの栄養計算結果を表す。
type Calculation struct {
	Weight Measurement `json:"weight"`
	Base   Measurement `json:"base"` // 基準量（gまたはml）に換算した重量
	Rows   []Row       `json:"rows"`
}

// ParseWeight は入力された重量文字列を数値に変換する。
// 小数点にはカンマも使える。数値でない、0以下、有限でない値はエラーを返す。
func ParseWeight(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, model.NewInvalidWeightError(s)
	}
	return v, nil
}

// Calculate は重量と単位から、報告済みの各栄養素の量を算出する。
// 行の構成はBuildRowsと同じで、PerServingに指定重量あたりの値が入る。
func Calculate(n model.Nutriments, perVolume bool, weight, unit string, loc Localizer) (*Calculation, error) {
	w, err := ParseWeight(weight)
	if err != nil {
		return nil, err
	}
	q := Measurement{Value: w, Unit: normalizeUnit(unit)}
	base, ok := q.ToBase()
	if !ok {
		return nil, model.NewInvalidUnitError(unit)
	}

	b := &RowBuilder{Localizer: loc, ServingBase: &base.Value}
	return &Calculation{
		Weight: q,
		Base:   base,
		Rows:   b.Build(n, perVolume),
	}, nil
}
