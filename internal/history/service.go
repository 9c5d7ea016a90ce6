package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/nutriscan/internal/model"
	"github.com/hitoshi/nutriscan/internal/repository"
	"github.com/hitoshi/nutriscan/internal/security"
)

// ScanRecorder はスキャン記録のメトリクス記録先。
type ScanRecorder interface {
	RecordScanRecorded()
}

type nopScanRecorder struct{}

func (nopScanRecorder) RecordScanRecorded() {}

// ScanInput はスキャン記録の入力。空のフィールドは登録済みの製品データで補完する。
type ScanInput struct {
	Barcode      string
	Title        string
	Brand        string
	Grade        string
	ThumbnailURL string
	ScannedAt    time.Time
}

// Service はスキャン履歴への記録を行う。
type Service struct {
	history   repository.HistoryRepository
	products  repository.ProductRepository
	sanitizer security.ContentSanitizerService
	metrics   ScanRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	history repository.HistoryRepository,
	products repository.ProductRepository,
	sanitizer security.ContentSanitizerService,
	metrics ScanRecorder,
	logger *slog.Logger,
) *Service {
	if metrics == nil {
		metrics = nopScanRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		history:   history,
		products:  products,
		sanitizer: sanitizer,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordScan は端末の履歴にスキャンを記録する。
// 同じバーコードを再スキャンした場合は既存エントリを更新し、登録順は維持する。
// 表示中の画面への反映は行わない（画面側のRefreshで反映される）。
func (s *Service) RecordScan(ctx context.Context, deviceID string, in ScanInput) (*model.HistoryEntry, error) {
	barcode := strings.TrimSpace(in.Barcode)
	if barcode == "" {
		return nil, model.NewInvalidBarcodeError(in.Barcode)
	}

	entry := &model.HistoryEntry{
		ID:           uuid.NewString(),
		DeviceID:     deviceID,
		Barcode:      barcode,
		Title:        s.sanitizer.Sanitize(in.Title),
		Brand:        s.sanitizer.Sanitize(in.Brand),
		Grade:        strings.ToLower(strings.TrimSpace(in.Grade)),
		ThumbnailURL: s.sanitizer.SanitizeURL(in.ThumbnailURL),
		ScannedAt:    in.ScannedAt,
	}
	if entry.ScannedAt.IsZero() {
		entry.ScannedAt = s.now()
	}
	if entry.Grade != "" && gradeRank(entry.Grade) > 4 {
		return nil, model.NewInvalidRequestError(fmt.Sprintf("無効なグレードです: %s", in.Grade))
	}

	if err := s.fillFromProduct(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.history.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("スキャン履歴の保存に失敗しました: %w", err)
	}

	s.metrics.RecordScanRecorded()
	s.logger.Info("scan recorded",
		slog.String("device_id", deviceID),
		slog.String("barcode", barcode),
	)
	return entry, nil
}

// fillFromProduct は入力にない項目を登録済みの製品スナップショットから補う。
func (s *Service) fillFromProduct(ctx context.Context, entry *model.HistoryEntry) error {
	if entry.Title != "" && entry.Brand != "" && entry.Grade != "" && entry.ThumbnailURL != "" {
		return nil
	}
	p, err := s.products.FindByBarcode(ctx, entry.Barcode)
	if err != nil {
		return fmt.Errorf("製品の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil
	}
	if entry.Title == "" {
		entry.Title = p.Name
	}
	if entry.Brand == "" {
		entry.Brand = p.Brand
	}
	if entry.Grade == "" {
		entry.Grade = p.NutritionGrade
	}
	if entry.ThumbnailURL == "" {
		entry.ThumbnailURL = p.ThumbnailURL
	}
	return nil
}
