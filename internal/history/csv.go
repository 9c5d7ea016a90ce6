package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/hitoshi/nutriscan/internal/model"
)

// csvHeader はエクスポートCSVのヘッダー行。
var csvHeader = []string{"title", "brand", "grade", "barcode", "scanned_at"}

// WriteCSV は履歴をヘッダー付きのCSVとして書き出す。
// スキャン日時はUTCのRFC 3339で出力する。
func WriteCSV(w io.Writer, entries []*model.HistoryEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Title,
			e.Brand,
			e.Grade,
			e.Barcode,
			e.ScannedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSVの書き込みに失敗: %w", err)
	}
	return nil
}

// ExportFilename はエクスポートファイル名（例: off-history_2024-05-01.csv）を返す。
func ExportFilename(flavor model.Flavor, now time.Time) string {
	return fmt.Sprintf("%s-history_%s.csv", flavor, now.Format("2006-01-02"))
}
