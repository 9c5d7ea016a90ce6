// Package model はドメインモデルを定義する。
package model

import "time"

// HistoryEntry はスキャン履歴の1件を表す。
// バーコードは端末ごとに一意で、製品参照のキーとなる。
type HistoryEntry struct {
	ID           string
	DeviceID     string
	Barcode      string
	Title        string
	Brand        string
	Grade        string // "a".."e"、未分類は空文字
	ThumbnailURL string
	ScannedAt    time.Time
	CreatedAt    time.Time
}

// SortType は履歴一覧のソート種別を表す。
type SortType string

const (
	SortTypeTitle   SortType = "title"
	SortTypeBrand   SortType = "brand"
	SortTypeGrade   SortType = "grade"
	SortTypeBarcode SortType = "barcode"
	SortTypeTime    SortType = "time"
)

// Flavor はアプリのビルドフレーバーを表す。
type Flavor string

const (
	FlavorOFF  Flavor = "off"  // Open Food Facts
	FlavorOBF  Flavor = "obf"  // Open Beauty Facts
	FlavorOPFF Flavor = "opff" // Open Pet Food Facts
	FlavorOPF  Flavor = "opf"  // Open Products Facts
)

// SortTypesFor はフレーバーで提供するソート種別を表示順で返す。
// gradeソートはOFFフレーバーでのみ提供する。
func SortTypesFor(flavor Flavor) []SortType {
	if flavor == FlavorOFF {
		return []SortType{SortTypeTitle, SortTypeBrand, SortTypeGrade, SortTypeBarcode, SortTypeTime}
	}
	return []SortType{SortTypeTitle, SortTypeBrand, SortTypeTime, SortTypeBarcode}
}

// ParseFlavor は文字列をFlavorに変換する。未知の値はfalseを返す。
func ParseFlavor(s string) (Flavor, bool) {
	switch Flavor(s) {
	case FlavorOFF, FlavorOBF, FlavorOPFF, FlavorOPF:
		return Flavor(s), true
	default:
		return "", false
	}
}
