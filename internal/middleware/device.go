// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/hitoshi/nutriscan/internal/model"
)

// DeviceIDHeader は端末IDを受け取るリクエストヘッダー名。
const DeviceIDHeader = "X-Device-ID"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// deviceIDContextKey はリクエストコンテキストに端末IDを格納するためのキー。
var deviceIDContextKey = contextKey("device_id")

// deviceIDSinkContextKey は上流のログミドルウェアへ端末IDを返すための書き込み先のキー。
var deviceIDSinkContextKey = contextKey("device_id_sink")

func withDeviceIDSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, deviceIDSinkContextKey, sink)
}

// NewDeviceMiddleware はX-Device-IDヘッダーから端末IDを読み取り、
// UUID形式であることを検証するミドルウェアを返す。
// 正規化した端末ID（小文字のハイフン区切り）をリクエストコンテキストに注入する。
// ヘッダーがない、または形式が不正な場合は400 Bad Requestを返す。
func NewDeviceMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(DeviceIDHeader)
			if raw == "" {
				WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidDeviceIDError())
				return
			}

			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidDeviceIDError())
				return
			}

			if sink, ok := r.Context().Value(deviceIDSinkContextKey).(*string); ok {
				*sink = id.String()
			}
			ctx := ContextWithDeviceID(r.Context(), id.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeviceIDFromContext はリクエストコンテキストから端末IDを取得する。
// 端末ミドルウェアを通過したリクエストでのみ有効。
func DeviceIDFromContext(ctx context.Context) (string, error) {
	deviceID, ok := ctx.Value(deviceIDContextKey).(string)
	if !ok || deviceID == "" {
		return "", fmt.Errorf("device ID not found in context")
	}
	return deviceID, nil
}

// ContextWithDeviceID はコンテキストに端末IDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey, deviceID)
}
