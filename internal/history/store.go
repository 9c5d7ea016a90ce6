package history

import (
	"context"

	"github.com/hitoshi/nutriscan/internal/model"
	"github.com/hitoshi/nutriscan/internal/repository"
)

// deviceStore はHistoryRepositoryを端末1台分のStoreとして扱うアダプタ。
type deviceStore struct {
	repo     repository.HistoryRepository
	deviceID string
}

// NewDeviceStore は端末IDに束縛されたStoreを生成する。
func NewDeviceStore(repo repository.HistoryRepository, deviceID string) Store {
	return &deviceStore{repo: repo, deviceID: deviceID}
}

func (s *deviceStore) FetchAll(ctx context.Context) ([]*model.HistoryEntry, error) {
	return s.repo.ListByDevice(ctx, s.deviceID)
}

func (s *deviceStore) Remove(ctx context.Context, barcode string) error {
	return s.repo.DeleteByBarcode(ctx, s.deviceID, barcode)
}

func (s *deviceStore) Clear(ctx context.Context) error {
	return s.repo.DeleteByDevice(ctx, s.deviceID)
}
