// Package cleanup は製品スナップショットの自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超えて更新されておらず、どの端末の履歴からも
// 参照されていない製品を日次バッチで削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// MetricsRecorder は削除件数の記録先。
type MetricsRecorder interface {
	RecordProductsCleaned(count int)
}

type nopMetrics struct{}

func (nopMetrics) RecordProductsCleaned(int) {}

// deleteQuery は保持期間を過ぎた未参照の製品を削除する。
const deleteQuery = `DELETE FROM products p
WHERE p.updated_at < now() - $1::interval
  AND NOT EXISTS (SELECT 1 FROM history_entries h WHERE h.barcode = p.barcode)`

// CleanupJob は保持期間を超過した製品スナップショットの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db            Executor
	logger        *slog.Logger
	metrics       MetricsRecorder
	RetentionDays int // 製品の保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。metricsがnilの場合は記録しない。
func NewCleanupJob(db Executor, metrics MetricsRecorder, logger *slog.Logger) *CleanupJob {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{
		db:            db,
		logger:        logger,
		metrics:       metrics,
		RetentionDays: 90,
	}
}

// Run は保持期間を超過した製品を削除する。
// updated_atがRetentionDays日前より古く、履歴エントリから参照されていない製品をDELETEする。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	interval := fmt.Sprintf("%d days", j.RetentionDays)

	result, err := j.db.ExecContext(ctx, deleteQuery, interval)
	if err != nil {
		j.logger.Error("製品クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("製品クリーンアップの実行に失敗: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	j.metrics.RecordProductsCleaned(int(deletedCount))

	duration := time.Since(start)
	j.logger.Info("製品クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}

// Start は起動直後に1回、その後intervalごとにRunを実行する。
// コンテキストがキャンセルされるまでブロックする。失敗はログに記録して継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	j.logger.Info("製品クリーンアップスケジューラを開始しました",
		slog.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// エラーはRun内でログ済み
		_ = j.Run(ctx)

		select {
		case <-ctx.Done():
			j.logger.Info("製品クリーンアップスケジューラを停止しました")
			return
		case <-ticker.C:
		}
	}
}
