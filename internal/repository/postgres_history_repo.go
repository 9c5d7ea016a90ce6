package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/nutriscan/internal/model"
)

// PostgresHistoryRepo はPostgreSQLを使用したスキャン履歴リポジトリ。
type PostgresHistoryRepo struct {
	db *sql.DB
}

// NewPostgresHistoryRepo はPostgresHistoryRepoを生成する。
func NewPostgresHistoryRepo(db *sql.DB) *PostgresHistoryRepo {
	return &PostgresHistoryRepo{db: db}
}

// ListByDevice は端末の履歴を登録順（created_at昇順）で返す。
func (r *PostgresHistoryRepo) ListByDevice(ctx context.Context, deviceID string) ([]*model.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, device_id, barcode, title, brand, grade, thumbnail_url, scanned_at, created_at
		 FROM history_entries
		 WHERE device_id = $1
		 ORDER BY created_at ASC, id ASC`,
		deviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("スキャン履歴の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	entries := []*model.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("スキャン履歴の読み取りに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スキャン履歴の走査に失敗しました: %w", err)
	}

	return entries, nil
}

// FindByBarcode は端末とバーコードで履歴エントリを検索する。見つからない場合はnilを返す。
func (r *PostgresHistoryRepo) FindByBarcode(ctx context.Context, deviceID, barcode string) (*model.HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, device_id, barcode, title, brand, grade, thumbnail_url, scanned_at, created_at
		 FROM history_entries
		 WHERE device_id = $1 AND barcode = $2`,
		deviceID, barcode,
	)
	e, err := scanHistoryEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("履歴エントリの検索に失敗しました: %w", err)
	}
	return e, nil
}

// Upsert は履歴エントリを作成または更新する。
// (device_id, barcode) が重複する場合はidとcreated_atを維持したまま内容を更新する。
func (r *PostgresHistoryRepo) Upsert(ctx context.Context, e *model.HistoryEntry) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO history_entries (id, device_id, barcode, title, brand, grade,
		                              thumbnail_url, scanned_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (device_id, barcode) DO UPDATE SET
		    title = EXCLUDED.title,
		    brand = EXCLUDED.brand,
		    grade = EXCLUDED.grade,
		    thumbnail_url = EXCLUDED.thumbnail_url,
		    scanned_at = EXCLUDED.scanned_at
		 RETURNING id, created_at`,
		e.ID, e.DeviceID, e.Barcode, e.Title, nullString(e.Brand), nullString(e.Grade),
		nullString(e.ThumbnailURL), e.ScannedAt, e.CreatedAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("スキャン履歴の保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByBarcode は端末の指定バーコードの履歴エントリを削除する。
func (r *PostgresHistoryRepo) DeleteByBarcode(ctx context.Context, deviceID, barcode string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE device_id = $1 AND barcode = $2`,
		deviceID, barcode,
	)
	if err != nil {
		return fmt.Errorf("履歴エントリの削除に失敗しました: %w", err)
	}
	return nil
}

// DeleteByDevice は端末の全履歴エントリを削除する。
func (r *PostgresHistoryRepo) DeleteByDevice(ctx context.Context, deviceID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM history_entries WHERE device_id = $1`,
		deviceID,
	)
	if err != nil {
		return fmt.Errorf("スキャン履歴の全削除に失敗しました: %w", err)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryEntry(s rowScanner) (*model.HistoryEntry, error) {
	e := &model.HistoryEntry{}
	var brand, grade, thumbnailURL sql.NullString
	if err := s.Scan(
		&e.ID, &e.DeviceID, &e.Barcode, &e.Title, &brand, &grade,
		&thumbnailURL, &e.ScannedAt, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Brand = nullStringValue(brand)
	e.Grade = nullStringValue(grade)
	e.ThumbnailURL = nullStringValue(thumbnailURL)
	return e, nil
}

var _ HistoryRepository = (*PostgresHistoryRepo)(nil)
