package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nutriscan/internal/history"
	"github.com/hitoshi/nutriscan/internal/middleware"
	"github.com/hitoshi/nutriscan/internal/model"
)

// HistorySessions は端末ごとの履歴画面Controllerを提供するインターフェース。
type HistorySessions interface {
	Get(deviceID string) (*history.Controller, error)
}

// ScanServiceInterface はスキャン記録のサービスインターフェース。
type ScanServiceInterface interface {
	RecordScan(ctx context.Context, deviceID string, in history.ScanInput) (*model.HistoryEntry, error)
}

// HistoryHandler はスキャン履歴画面のHTTPハンドラー。
type HistoryHandler struct {
	sessions HistorySessions
	scans    ScanServiceInterface
	flavor   model.Flavor
	now      func() time.Time

	// sseKeepAlive はSSEのコメント行を送る間隔。
	sseKeepAlive time.Duration
}

// NewHistoryHandler はHistoryHandlerを生成する。
func NewHistoryHandler(sessions HistorySessions, scans ScanServiceInterface, flavor model.Flavor) *HistoryHandler {
	return &HistoryHandler{
		sessions:     sessions,
		scans:        scans,
		flavor:       flavor,
		now:          time.Now,
		sseKeepAlive: 25 * time.Second,
	}
}

// historyEntryResponse は履歴エントリのAPIレスポンス。
type historyEntryResponse struct {
	ID           string    `json:"id"`
	Barcode      string    `json:"barcode"`
	Title        string    `json:"title"`
	Brand        string    `json:"brand"`
	Grade        string    `json:"grade,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ScannedAt    time.Time `json:"scanned_at"`
}

// historyResponse は履歴画面の状態のAPIレスポンス。
type historyResponse struct {
	Version       uint64                 `json:"version"`
	State         history.State          `json:"state"`
	Entries       []historyEntryResponse `json:"entries"`
	SortType      model.SortType         `json:"sort_type"`
	SortTypes     []model.SortType       `json:"sort_types"`
	MenuEnabled   bool                   `json:"menu_enabled"`
	ShowScanFirst bool                   `json:"show_scan_first"`
	Error         string                 `json:"error,omitempty"`
}

// scanRequest はスキャン記録リクエストのボディ。
type scanRequest struct {
	Barcode      string     `json:"barcode"`
	Title        string     `json:"title"`
	Brand        string     `json:"brand"`
	Grade        string     `json:"grade"`
	ThumbnailURL string     `json:"thumbnail_url"`
	ScannedAt    *time.Time `json:"scanned_at"`
}

// sortRequest は並べ替え変更リクエストのボディ。
type sortRequest struct {
	SortType string `json:"sort_type"`
}

// controller はリクエストの端末に対応するControllerを返す。
// 取得できない場合はエラーレスポンスを書き込みnilを返す。
func (h *HistoryHandler) controller(w http.ResponseWriter, r *http.Request) *history.Controller {
	deviceID, err := middleware.DeviceIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDeviceIDError())
		return nil
	}
	c, err := h.sessions.Get(deviceID)
	if err != nil {
		handleServiceError(w, err)
		return nil
	}
	return c
}

// GetHistory は履歴画面の現在の状態を返す。
// 初回（Loading）の場合は取得してから返す。sortクエリが指定された場合は並べ替えを適用する。
// 取得に失敗した場合もError状態として200で返す。
// GET /api/history?sort=title
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	if c.Snapshot().State == history.StateLoading {
		err := c.Refresh(r.Context())
		var apiErr *model.APIError
		switch {
		case err == nil, errors.Is(err, history.ErrSuperseded):
		case errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDataUnavailable:
		default:
			handleServiceError(w, err)
			return
		}
	}

	if sortType := r.URL.Query().Get("sort"); sortType != "" {
		if err := c.SetSortType(model.SortType(sortType)); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, toHistoryResponse(c.Snapshot()))
}

// RecordScan はスキャンを履歴に記録する。表示中の履歴にはRefreshで反映される。
// POST /api/history
func (h *HistoryHandler) RecordScan(w http.ResponseWriter, r *http.Request) {
	deviceID, err := middleware.DeviceIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidDeviceIDError())
		return
	}

	var req scanRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	in := history.ScanInput{
		Barcode:      req.Barcode,
		Title:        req.Title,
		Brand:        req.Brand,
		Grade:        req.Grade,
		ThumbnailURL: req.ThumbnailURL,
	}
	if req.ScannedAt != nil {
		in.ScannedAt = req.ScannedAt.UTC()
	}

	entry, err := h.scans.RecordScan(r.Context(), deviceID, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHistoryEntryResponse(*entry))
}

// Refresh は履歴を再取得する。
// POST /api/history/refresh
func (h *HistoryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	if err := c.Refresh(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(c.Snapshot()))
}

// SetSort は並べ替え種別を変更する。
// PUT /api/history/sort
func (h *HistoryHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	var req sortRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if err := c.SetSortType(model.SortType(req.SortType)); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(c.Snapshot()))
}

// DeleteEntry は履歴からエントリを削除する。
// DELETE /api/history/{barcode}
func (h *HistoryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	if err := c.Remove(r.Context(), chi.URLParam(r, "barcode")); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(c.Snapshot()))
}

// ClearAll は履歴をすべて削除する。
// DELETE /api/history
func (h *HistoryHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}
	if err := c.ClearAll(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryResponse(c.Snapshot()))
}

// Export は表示中の履歴をCSVファイルとして返す。
// 書き出しが完了してからレスポンスを送るため、失敗時はエラーレスポンスを返せる。
// GET /api/history/export
func (h *HistoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	var buf bytes.Buffer
	rows, err := c.ExportCSV(&buf)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filename := history.ExportFilename(h.flavor, h.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Export-Rows", strconv.Itoa(rows))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Events は履歴画面の状態をServer-Sent Eventsで配信する。
// 接続直後に現在の状態を送り、以降は状態が変わるたびに送る。
// GET /api/history/events
func (h *HistoryHandler) Events(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	rc := http.NewResponseController(w)
	// サーバーのWriteTimeoutを解除する。未対応のWriterでは無視する
	_ = rc.SetWriteDeadline(time.Time{})

	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Warn("streaming not supported", slog.String("error", err.Error()))
		return
	}

	keepAlive := time.NewTicker(h.sseKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case snap, ok := <-updates:
			if !ok {
				// セッションが破棄された
				return
			}
			data, err := json.Marshal(toHistoryResponse(snap))
			if err != nil {
				slog.Error("failed to encode history event", slog.String("error", err.Error()))
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: state\ndata: %s\n\n", snap.Version, data); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// toHistoryResponse はControllerのSnapshotをレスポンス型に変換する。
func toHistoryResponse(s history.Snapshot) historyResponse {
	entries := make([]historyEntryResponse, len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = toHistoryEntryResponse(e)
	}
	return historyResponse{
		Version:       s.Version,
		State:         s.State,
		Entries:       entries,
		SortType:      s.SortType,
		SortTypes:     s.SortTypes,
		MenuEnabled:   s.MenuEnabled(),
		ShowScanFirst: s.ShowScanFirst(),
		Error:         s.Error,
	}
}

func toHistoryEntryResponse(e model.HistoryEntry) historyEntryResponse {
	return historyEntryResponse{
		ID:           e.ID,
		Barcode:      e.Barcode,
		Title:        e.Title,
		Brand:        e.Brand,
		Grade:        e.Grade,
		ThumbnailURL: e.ThumbnailURL,
		ScannedAt:    e.ScannedAt.UTC(),
	}
}
