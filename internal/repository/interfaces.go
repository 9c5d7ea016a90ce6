// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/nutriscan/internal/model"
)

// ProductRepository は製品スナップショットの永続化インターフェース。
type ProductRepository interface {
	// FindByBarcode は指定バーコードの製品を取得する。見つからない場合はnilを返す。
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)

	// Upsert は製品を作成または上書き更新する。created_atは初回登録時の値を維持する。
	Upsert(ctx context.Context, product *model.Product) error
}

// HistoryRepository は端末ごとのスキャン履歴の永続化インターフェース。
type HistoryRepository interface {
	// ListByDevice は端末の履歴を登録順（created_at昇順）で返す。
	ListByDevice(ctx context.Context, deviceID string) ([]*model.HistoryEntry, error)

	// FindByBarcode は端末とバーコードで履歴エントリを検索する。見つからない場合はnilを返す。
	FindByBarcode(ctx context.Context, deviceID, barcode string) (*model.HistoryEntry, error)

	// Upsert は履歴エントリを作成する。同じ端末とバーコードのエントリが既にある場合は
	// タイトル・ブランド・グレード・サムネイル・スキャン日時を更新し、登録順は維持する。
	Upsert(ctx context.Context, entry *model.HistoryEntry) error

	// DeleteByBarcode は端末の指定バーコードの履歴エントリを削除する。
	// 対象が存在しない場合もエラーにしない。
	DeleteByBarcode(ctx context.Context, deviceID, barcode string) error

	// DeleteByDevice は端末の全履歴エントリを削除する。
	DeleteByDevice(ctx context.Context, deviceID string) error
}
