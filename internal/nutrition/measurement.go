package nutrition

import (
	"regexp"
	"strconv"
	"strings"
)

// VolumeUnit は分量表示の単位設定を表す。
type VolumeUnit string

const (
	VolumeUnitLiter VolumeUnit = "l"
	VolumeUnitOunce VolumeUnit = "oz"
)

// ParseVolumeUnit は文字列をVolumeUnitに変換する。未知の値はfalseを返す。
func ParseVolumeUnit(s string) (VolumeUnit, bool) {
	switch VolumeUnit(strings.ToLower(strings.TrimSpace(s))) {
	case VolumeUnitLiter:
		return VolumeUnitLiter, true
	case VolumeUnitOunce:
		return VolumeUnitOunce, true
	default:
		return "", false
	}
}

const (
	gramsPerOunce         = 28.3495
	millilitersPerFlOunce = 29.5735
)

// Measurement は数値と単位の組を表す。
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

var quantityPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(fl\.?\s?oz|oz|mg|kg|g|cl|dl|ml|l)\b`)

// unitScale は単位ごとの基準量（gまたはml）への換算係数と、体積単位かどうかを保持する。
var unitScale = map[string]struct {
	factor float64
	volume bool
}{
	"mg":    {0.001, false},
	"g":     {1, false},
	"kg":    {1000, false},
	"oz":    {gramsPerOunce, false},
	"ml":    {1, true},
	"cl":    {10, true},
	"dl":    {100, true},
	"l":     {1000, true},
	"fl oz": {millilitersPerFlOunce, true},
}

// normalizeUnit は表記ゆれのある単位文字列を正規化する。
func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if strings.HasPrefix(u, "fl") {
		return "fl oz"
	}
	return u
}

// ParseQuantity は "30 g" や "1,5 L (2 cups)" のような文字列から最初の数量を取り出す。
// 数量を含まない場合はfalseを返す。
func ParseQuantity(s string) (Measurement, bool) {
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return Measurement{}, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return Measurement{}, false
	}
	return Measurement{Value: v, Unit: normalizeUnit(m[2])}, true
}

// ToBase は数量を基準量（質量はg、体積はml）に換算する。
func (m Measurement) ToBase() (Measurement, bool) {
	s, ok := unitScale[m.Unit]
	if !ok {
		return Measurement{}, false
	}
	unit := "g"
	if s.volume {
		unit = "ml"
	}
	return Measurement{Value: m.Value * s.factor, Unit: unit}, true
}

// ServingBase は1食分の文字列を基準量（gまたはml）の数値に変換する。
// 解析できない場合はfalseを返し、1食あたりの値は算出しない。
func ServingBase(serving string) (float64, bool) {
	q, ok := ParseQuantity(serving)
	if !ok {
		return 0, false
	}
	b, ok := q.ToBase()
	if !ok {
		return 0, false
	}
	return b.Value, true
}

// ConvertServing は1食分の文字列を単位設定に合わせた表示用の数量に変換する。
//
// ozが設定されている場合はメートル法の分量をoz（体積はfl oz）に変換する。
// lが設定されている場合はoz表記の分量のみをgまたはmlに変換する。
// それ以外の組み合わせや解析できない文字列はfalseを返す。
func ConvertServing(serving string, pref VolumeUnit) (Measurement, bool) {
	q, ok := ParseQuantity(serving)
	if !ok {
		return Measurement{}, false
	}
	isOunce := q.Unit == "oz" || q.Unit == "fl oz"

	switch pref {
	case VolumeUnitOunce:
		if isOunce {
			return q, true
		}
		b, ok := q.ToBase()
		if !ok {
			return Measurement{}, false
		}
		if b.Unit == "ml" {
			return Measurement{Value: b.Value / millilitersPerFlOunce, Unit: "fl oz"}, true
		}
		return Measurement{Value: b.Value / gramsPerOunce, Unit: "oz"}, true
	case VolumeUnitLiter:
		if !isOunce {
			return Measurement{}, false
		}
		return q.ToBase()
	default:
		return Measurement{}, false
	}
}
