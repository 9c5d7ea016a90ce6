package nutrition

import (
	"math"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

// TestParseQuantity は分量文字列から最初の数量を取り出すことを検証する。
func TestParseQuantity(t *testing.T) {
	tests := []struct {
		input  string
		want   Measurement
		wantOK bool
	}{
		{"30 g", Measurement{30, "g"}, true},
		{"30g", Measurement{30, "g"}, true},
		{"1,5 L", Measurement{1.5, "l"}, true},
		{"250 ml (1 cup)", Measurement{250, "ml"}, true},
		{"2 oz", Measurement{2, "oz"}, true},
		{"8 fl oz", Measurement{8, "fl oz"}, true},
		{"12 fl. oz", Measurement{12, "fl oz"}, true},
		{"1 portion (40 g)", Measurement{40, "g"}, true},
		{"unparsable-xyz", Measurement{}, false},
		{"", Measurement{}, false},
		{"2 lb", Measurement{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseQuantity(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (!approxEqual(got.Value, tt.want.Value) || got.Unit != tt.want.Unit) {
				t.Errorf("ParseQuantity(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// TestServingBase は1食分が基準量に換算されることを検証する。
func TestServingBase(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"30 g", 30, true},
		{"0.5 kg", 500, true},
		{"500 mg", 0.5, true},
		{"33 cl", 330, true},
		{"1 l", 1000, true},
		{"1 oz", 28.3495, true},
		{"1 fl oz", 29.5735, true},
		{"unparsable-xyz", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ServingBase(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !approxEqual(got, tt.want) {
				t.Errorf("ServingBase(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestConvertServing は単位設定に応じた表示用の変換を検証する。
func TestConvertServing(t *testing.T) {
	tests := []struct {
		name    string
		serving string
		pref    VolumeUnit
		want    Measurement
		wantOK  bool
	}{
		{"oz設定でgをozに", "56.699 g", VolumeUnitOunce, Measurement{2, "oz"}, true},
		{"oz設定でmlをfl ozに", "29.5735 ml", VolumeUnitOunce, Measurement{1, "fl oz"}, true},
		{"oz設定でozはそのまま", "3 oz", VolumeUnitOunce, Measurement{3, "oz"}, true},
		{"l設定でozをgに", "2 oz", VolumeUnitLiter, Measurement{56.699, "g"}, true},
		{"l設定でfl ozをmlに", "1 fl oz", VolumeUnitLiter, Measurement{29.5735, "ml"}, true},
		{"l設定でメートル法は変換しない", "30 g", VolumeUnitLiter, Measurement{}, false},
		{"解析できない文字列", "unparsable-xyz", VolumeUnitOunce, Measurement{}, false},
		{"未知の設定", "30 g", VolumeUnit("cups"), Measurement{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConvertServing(tt.serving, tt.pref)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && (!approxEqual(got.Value, tt.want.Value) || got.Unit != tt.want.Unit) {
				t.Errorf("ConvertServing(%q, %q) = %+v, want %+v", tt.serving, tt.pref, got, tt.want)
			}
		})
	}
}

// TestParseVolumeUnit は単位設定の解析を検証する。
func TestParseVolumeUnit(t *testing.T) {
	if u, ok := ParseVolumeUnit(" OZ "); !ok || u != VolumeUnitOunce {
		t.Errorf("ParseVolumeUnit(OZ) = %q, %v", u, ok)
	}
	if u, ok := ParseVolumeUnit("l"); !ok || u != VolumeUnitLiter {
		t.Errorf("ParseVolumeUnit(l) = %q, %v", u, ok)
	}
	if _, ok := ParseVolumeUnit("gallon"); ok {
		t.Error("ParseVolumeUnit(gallon) should fail")
	}
}
