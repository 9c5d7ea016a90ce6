package nutrition

import "github.com/hitoshi/nutriscan/internal/model"

// RowKind は栄養成分表の行種別を表す。
type RowKind string

const (
	RowHeader     RowKind = "header"
	RowGroupLabel RowKind = "group"
	RowLeaf       RowKind = "leaf"
)

// Row は栄養成分表の1行を表す。Kindによって有効なフィールドが異なる。
//
//   - RowHeader: PerVolume
//   - RowGroupLabel: Text, Bold
//   - RowLeaf: Nutrient, Text, Per100g, PerServing, Unit, Modifier
type Row struct {
	Kind       RowKind        `json:"kind"`
	PerVolume  bool           `json:"per_volume,omitempty"`
	Text       string         `json:"text,omitempty"`
	Bold       bool           `json:"bold,omitempty"`
	Nutrient   model.Nutrient `json:"nutrient,omitempty"`
	Per100g    *float64       `json:"per_100g,omitempty"`
	PerServing *float64       `json:"per_serving,omitempty"`
	Unit       string         `json:"unit,omitempty"`
	Modifier   model.Modifier `json:"modifier,omitempty"`
}

// RowBuilder は栄養値マップから表示行を組み立てる。
type RowBuilder struct {
	Localizer Localizer
	// ServingBase は1食分の基準量（gまたはml）。nilの場合は1食あたりの値を出さない。
	ServingBase *float64
}

// NewRowBuilder は1食分の文字列を解析してRowBuilderを生成する。
// 解析できない1食分は1食あたりの値なしとして扱う。
func NewRowBuilder(loc Localizer, serving string) *RowBuilder {
	b := &RowBuilder{Localizer: loc}
	if base, ok := ServingBase(serving); ok {
		b.ServingBase = &base
	}
	return b
}

// BuildRows は1食あたりの値なしで表示行を組み立てる。
func BuildRows(n model.Nutriments, perVolume bool, loc Localizer) []Row {
	return (&RowBuilder{Localizer: loc}).Build(n, perVolume)
}

// Build は栄養値マップから表示行を組み立てる。
// 先頭は必ず1つのヘッダー行で、以降はFamiliesの順に報告済みの栄養素のみを並べる。
func (b *RowBuilder) Build(n model.Nutriments, perVolume bool) []Row {
	rows := []Row{{Kind: RowHeader, PerVolume: perVolume}}

	for _, f := range Families {
		switch f.Header {
		case HeaderWhenPrimary:
			if !n.Has(f.Primary) {
				continue
			}
			rows = append(rows, b.groupLabel(f))
		case HeaderWhenAnyMember:
			if !f.hasAnyMember(n) {
				continue
			}
			rows = append(rows, b.groupLabel(f))
		}

		for _, kind := range f.Members {
			if v, ok := n.Get(kind); ok {
				rows = append(rows, b.leaf(v))
			}
		}
	}
	return rows
}

func (b *RowBuilder) groupLabel(f Family) Row {
	return Row{Kind: RowGroupLabel, Text: b.Localizer.Text(f.LabelKey), Bold: true}
}

func (b *RowBuilder) leaf(v model.NutrientValue) Row {
	per100 := *v.Amount
	row := Row{
		Kind:     RowLeaf,
		Nutrient: v.Nutrient,
		Text:     b.Localizer.Text(string(v.Nutrient)),
		Per100g:  &per100,
		Unit:     v.Unit,
		Modifier: v.Modifier,
	}
	if b.ServingBase != nil {
		serving := per100 * *b.ServingBase / 100
		row.PerServing = &serving
	}
	return row
}

// ShowTable は栄養成分表を表示するかを返す。ヘッダー行以外の行がある場合のみtrue。
func ShowTable(rows []Row) bool {
	return len(rows) > 1
}
