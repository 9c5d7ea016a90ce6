package history

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/hitoshi/nutriscan/internal/model"
)

// gradeRank はグレードの並び順。a〜e以外（未分類を含む）は最後。
func gradeRank(grade string) int {
	switch strings.ToLower(grade) {
	case "a":
		return 0
	case "b":
		return 1
	case "c":
		return 2
	case "d":
		return 3
	case "e":
		return 4
	default:
		return 5
	}
}

type sortItem struct {
	entry *model.HistoryEntry
	key   string
}

// SortEntries は履歴を指定種別で安定ソートした新しいスライスを返す。入力は変更しない。
//
// title, brand, barcode はUnicodeのケースフォールディングで大文字小文字を区別せず昇順、
// time はスキャン日時の降順、grade は a<b<c<d<e<未分類 の順。
// キーが等しいエントリは入力の順序を保つ。
func SortEntries(entries []*model.HistoryEntry, sortType model.SortType) []*model.HistoryEntry {
	items := make([]sortItem, len(entries))
	// Caserはゴルーチン間で共有できないため呼び出しごとに生成する
	fold := cases.Fold()
	for i, e := range entries {
		items[i] = sortItem{entry: e}
		switch sortType {
		case model.SortTypeTitle:
			items[i].key = fold.String(e.Title)
		case model.SortTypeBrand:
			items[i].key = fold.String(e.Brand)
		case model.SortTypeBarcode:
			items[i].key = fold.String(e.Barcode)
		}
	}

	slices.SortStableFunc(items, func(a, b sortItem) int {
		switch sortType {
		case model.SortTypeTime:
			return b.entry.ScannedAt.Compare(a.entry.ScannedAt)
		case model.SortTypeGrade:
			return gradeRank(a.entry.Grade) - gradeRank(b.entry.Grade)
		case model.SortTypeTitle, model.SortTypeBrand, model.SortTypeBarcode:
			return strings.Compare(a.key, b.key)
		default:
			return 0
		}
	})

	sorted := make([]*model.HistoryEntry, len(items))
	for i, it := range items {
		sorted[i] = it.entry
	}
	return sorted
}
