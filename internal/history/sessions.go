package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hitoshi/nutriscan/internal/model"
	"github.com/hitoshi/nutriscan/internal/repository"
)

// Registry は端末ごとの履歴画面Controllerを保持する。
// 一定時間アクセスのない端末のControllerは期限切れで破棄され、その際にStopされる。
type Registry struct {
	mu      sync.Mutex
	repo    repository.HistoryRepository
	flavor  model.Flavor
	ttl     time.Duration
	items   *gocache.Cache
	metrics MetricsRecorder
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry はRegistryを生成する。ctxが終了すると以降に生成するControllerも即座に停止状態になる。
func NewRegistry(
	ctx context.Context,
	repo repository.HistoryRepository,
	flavor model.Flavor,
	ttl time.Duration,
	metrics MetricsRecorder,
	logger *slog.Logger,
) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	rctx, cancel := context.WithCancel(ctx)
	r := &Registry{
		repo:    repo,
		flavor:  flavor,
		ttl:     ttl,
		items:   gocache.New(ttl, ttl/2),
		metrics: metrics,
		logger:  logger,
		ctx:     rctx,
		cancel:  cancel,
	}
	r.items.OnEvicted(func(deviceID string, v interface{}) {
		if c, ok := v.(*Controller); ok {
			c.Stop()
			r.logger.Debug("history session closed", slog.String("device_id", deviceID))
		}
	})
	return r
}

// Get は端末のControllerを返す。存在しない場合は生成してStartする。
// 呼び出しのたびに有効期限を延長する。
func (r *Registry) Get(deviceID string) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.items.Get(deviceID); ok {
		c := v.(*Controller)
		r.items.Set(deviceID, c, gocache.DefaultExpiration)
		return c, nil
	}

	c := NewController(NewDeviceStore(r.repo, deviceID), r.flavor, r.metrics,
		r.logger.With(slog.String("device_id", deviceID)))
	if err := c.Start(r.ctx); err != nil {
		return nil, err
	}
	r.items.Set(deviceID, c, gocache.DefaultExpiration)
	r.logger.Debug("history session opened", slog.String("device_id", deviceID))
	return c, nil
}

// Close は端末のControllerを破棄する。
func (r *Registry) Close(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items.Delete(deviceID)
}

// Len は保持しているController数を返す。
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

// Shutdown はすべてのControllerを停止して破棄する。
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()
	for deviceID := range r.items.Items() {
		r.items.Delete(deviceID)
	}
}
