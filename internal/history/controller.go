// Package history はスキャン履歴画面の状態管理を提供する。
//
// Controller は Loading / Data / Error の状態機械で、履歴の再取得・削除・
// 全削除・並べ替え・CSVエクスポートを1つのミューテックスで直列化する。
// 状態の変化はSubscribeで購読でき、購読者には常に最新のスナップショットが届く。
package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/hitoshi/nutriscan/internal/model"
)

// State は履歴画面の状態。
type State string

const (
	StateLoading State = "loading"
	StateData    State = "data"
	StateError   State = "error"
)

var (
	// ErrInvalidState は現在の状態では受け付けない操作であることを示す。
	ErrInvalidState = errors.New("history: operation not allowed in current state")
	// ErrSuperseded は後から発行された再取得に結果が置き換えられたことを示す。
	ErrSuperseded = errors.New("history: refresh superseded by a newer refresh")
	// ErrStopped はStop後の操作であることを示す。
	ErrStopped = errors.New("history: controller stopped")
	// ErrNotStarted はStart前の操作であることを示す。
	ErrNotStarted = errors.New("history: controller not started")
)

// Store は端末1台分の履歴の永続化先。
type Store interface {
	FetchAll(ctx context.Context) ([]*model.HistoryEntry, error)
	Remove(ctx context.Context, barcode string) error
	Clear(ctx context.Context) error
}

// MetricsRecorder は履歴操作のメトリクス記録先。
type MetricsRecorder interface {
	RecordHistoryRefresh(outcome string)
	RecordHistoryExport(rows int)
}

type nopMetrics struct{}

func (nopMetrics) RecordHistoryRefresh(string) {}
func (nopMetrics) RecordHistoryExport(int)     {}

// Snapshot はある時点の履歴画面の状態。Entriesは表示順（並べ替え済み）。
type Snapshot struct {
	Version   uint64               `json:"version"`
	State     State                `json:"state"`
	Entries   []model.HistoryEntry `json:"entries"`
	SortType  model.SortType       `json:"sort_type"`
	SortTypes []model.SortType     `json:"sort_types"`
	Error     string               `json:"error,omitempty"`
}

// MenuEnabled は並べ替え・エクスポート・全削除のメニューを有効にするかを返す。
func (s Snapshot) MenuEnabled() bool {
	return s.State == StateData && len(s.Entries) > 0
}

// ShowScanFirst は「最初の製品をスキャン」の案内を出すかを返す。
func (s Snapshot) ShowScanFirst() bool {
	return s.State == StateError || (s.State == StateData && len(s.Entries) == 0)
}

// Controller は1画面分のスキャン履歴の状態機械。
type Controller struct {
	mu sync.Mutex

	store     Store
	sortTypes []model.SortType
	metrics   MetricsRecorder
	logger    *slog.Logger

	state    State
	backing  []*model.HistoryEntry // ストアの順序（登録順）
	display  []*model.HistoryEntry
	sortType model.SortType
	lastErr  error
	gen      uint64 // 状態を確定させる操作の世代
	version  uint64

	life    context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool

	subs    map[int]chan Snapshot
	nextSub int
}

// NewController は初期状態LoadingのControllerを生成する。
// 提供するソート種別はフレーバーで決まり、既定はtime。
func NewController(store Store, flavor model.Flavor, metrics MetricsRecorder, logger *slog.Logger) *Controller {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		store:     store,
		sortTypes: model.SortTypesFor(flavor),
		metrics:   metrics,
		logger:    logger,
		state:     StateLoading,
		backing:   []*model.HistoryEntry{},
		display:   []*model.HistoryEntry{},
		sortType:  model.SortTypeTime,
		subs:      make(map[int]chan Snapshot),
	}
}

// Start は画面のライフサイクルを開始する。ctxがキャンセルされるとStopと同様に
// 実行中のストア呼び出しが打ち切られる。2回目以降の呼び出しは何もしない。
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return nil
	}
	c.life, c.cancel = context.WithCancel(ctx)
	c.started = true
	return nil
}

// Stop は画面のライフサイクルを終了する。実行中のストア呼び出しをキャンセルし、
// 以降は状態を一切変更しない。購読チャネルはすべて閉じられる。
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	if c.cancel != nil {
		c.cancel()
	}
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
}

// Snapshot は現在の状態を返す。
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SortTypes はこのControllerで選択できるソート種別を返す。
func (c *Controller) SortTypes() []model.SortType {
	return slices.Clone(c.sortTypes)
}

// Subscribe は状態変化の購読を開始する。チャネルには直後に現在の状態が送られる。
// 受信が追いつかない場合は古いスナップショットを捨てて最新のみを保持する。
// 返される関数で購読を解除する。Stop済みの場合は閉じたチャネルを返す。
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.stopped {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.snapshotLocked()

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			close(sub)
			delete(c.subs, id)
		}
	}
}

// Refresh は履歴をストアから再取得する。どの状態からでも発行でき、
// Loadingを経てDataまたはErrorになる。
// 実行中に新しいRefreshが発行された場合、古い結果は破棄されErrSupersededを返す。
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLifecycleLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.gen++
	gen := c.gen
	prevState, prevErr := c.state, c.lastErr
	c.state = StateLoading
	c.lastErr = nil
	c.publishLocked()
	callCtx, release := c.callContextLocked(ctx)
	c.mu.Unlock()

	entries, err := c.store.FetchAll(callCtx)
	release()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if gen != c.gen {
		c.metrics.RecordHistoryRefresh("superseded")
		return ErrSuperseded
	}
	if err != nil && ctx.Err() != nil {
		// 呼び出し元の取り消しは共有状態に残さず、Loading前の状態に戻す
		c.state = prevState
		c.lastErr = prevErr
		c.publishLocked()
		c.metrics.RecordHistoryRefresh("cancelled")
		return ctx.Err()
	}
	if err != nil {
		c.state = StateError
		c.lastErr = err
		c.publishLocked()
		c.metrics.RecordHistoryRefresh("error")
		c.logger.Warn("history refresh failed", slog.String("error", err.Error()))
		return model.NewDataUnavailableError()
	}

	if entries == nil {
		entries = []*model.HistoryEntry{}
	}
	c.backing = entries
	c.state = StateData
	c.resortLocked()
	c.publishLocked()
	c.metrics.RecordHistoryRefresh("success")
	return nil
}

// Remove は表示中の履歴からバーコードのエントリを削除する。Data状態でのみ有効。
// ストアからの削除に成功した後で、エントリを除いたDataを通知する。
func (c *Controller) Remove(ctx context.Context, barcode string) error {
	c.mu.Lock()
	if err := c.checkLifecycleLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state != StateData {
		c.mu.Unlock()
		return ErrInvalidState
	}
	if !slices.ContainsFunc(c.backing, func(e *model.HistoryEntry) bool { return e.Barcode == barcode }) {
		c.mu.Unlock()
		return model.NewEntryNotFoundError(barcode)
	}
	gen := c.gen
	callCtx, release := c.callContextLocked(ctx)
	c.mu.Unlock()

	err := c.store.Remove(callCtx, barcode)
	release()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("履歴エントリの削除に失敗: %w", err)
	}
	// 削除中に再取得が発行された場合はその結果を正とする
	if gen != c.gen || c.state != StateData {
		return nil
	}
	c.backing = slices.DeleteFunc(slices.Clone(c.backing), func(e *model.HistoryEntry) bool {
		return e.Barcode == barcode
	})
	c.resortLocked()
	c.publishLocked()
	return nil
}

// ClearAll はストアの履歴をすべて削除し、空のDataにする。DataまたはError状態で有効。
func (c *Controller) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLifecycleLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state != StateData && c.state != StateError {
		c.mu.Unlock()
		return ErrInvalidState
	}
	gen := c.gen
	callCtx, release := c.callContextLocked(ctx)
	c.mu.Unlock()

	err := c.store.Clear(callCtx)
	release()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("履歴の全削除に失敗: %w", err)
	}
	if gen != c.gen {
		return nil
	}
	c.backing = []*model.HistoryEntry{}
	c.state = StateData
	c.lastErr = nil
	c.resortLocked()
	c.publishLocked()
	return nil
}

// SetSortType は表示順を変更する。Data状態でのみ有効で、再取得は行わない。
// フレーバーで提供していないソート種別はINVALID_SORT_TYPEエラーを返す。
func (c *Controller) SetSortType(sortType model.SortType) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLifecycleLocked(); err != nil {
		return err
	}
	if !slices.Contains(c.sortTypes, sortType) {
		return model.NewInvalidSortTypeError(string(sortType))
	}
	if c.state != StateData {
		return ErrInvalidState
	}
	c.sortType = sortType
	c.resortLocked()
	c.publishLocked()
	return nil
}

// ExportCSV は表示中の（並べ替え済みの）履歴をCSVで書き出し、書き出した件数を返す。
// Data状態でのみ有効。dstがnilの場合は何もしない。
// 書き込みに失敗した場合はEXPORT_FAILEDエラーを返し、状態は変更しない。
func (c *Controller) ExportCSV(dst io.Writer) (int, error) {
	c.mu.Lock()
	if err := c.checkLifecycleLocked(); err != nil {
		c.mu.Unlock()
		return 0, err
	}
	if c.state != StateData {
		c.mu.Unlock()
		return 0, ErrInvalidState
	}
	entries := slices.Clone(c.display)
	c.mu.Unlock()

	if dst == nil {
		return 0, nil
	}
	if err := WriteCSV(dst, entries); err != nil {
		c.logger.Warn("history export failed", slog.String("error", err.Error()))
		return 0, model.NewExportFailedError(err.Error())
	}
	c.metrics.RecordHistoryExport(len(entries))
	return len(entries), nil
}

func (c *Controller) checkLifecycleLocked() error {
	if c.stopped {
		return ErrStopped
	}
	if !c.started {
		return ErrNotStarted
	}
	return nil
}

// callContextLocked はリクエストのctxとライフサイクルのどちらが終了しても
// キャンセルされるctxを返す。
func (c *Controller) callContextLocked(ctx context.Context) (context.Context, func()) {
	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) resortLocked() {
	c.display = SortEntries(c.backing, c.sortType)
}

func (c *Controller) snapshotLocked() Snapshot {
	entries := make([]model.HistoryEntry, len(c.display))
	for i, e := range c.display {
		entries[i] = *e
	}
	s := Snapshot{
		Version:   c.version,
		State:     c.state,
		Entries:   entries,
		SortType:  c.sortType,
		SortTypes: slices.Clone(c.sortTypes),
	}
	if c.state != StateData {
		s.Entries = []model.HistoryEntry{}
	}
	if c.lastErr != nil {
		s.Error = model.ErrCodeDataUnavailable
	}
	return s
}

// publishLocked は購読者に最新の状態を送る。受信されていない古い値は捨てる。
func (c *Controller) publishLocked() {
	c.version++
	snap := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
