package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/nutriscan/internal/history"
	"github.com/hitoshi/nutriscan/internal/middleware"
	"github.com/hitoshi/nutriscan/internal/model"
)

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSONBody はリクエストボディをJSONとして読み込む。
// 解析に失敗した場合はINVALID_REQUESTを書き込みfalseを返す。
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return false
	}
	return true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	switch {
	case errors.Is(err, history.ErrInvalidState),
		errors.Is(err, history.ErrSuperseded),
		errors.Is(err, history.ErrNotStarted):
		writeAPIErrorResponse(w, http.StatusConflict, model.NewHistoryNotReadyError())
		return
	case errors.Is(err, history.ErrStopped):
		writeAPIErrorResponse(w, http.StatusServiceUnavailable, model.NewDataUnavailableError())
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeProductNotFound, model.ErrCodeEntryNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidBarcode, model.ErrCodeInvalidProduct, model.ErrCodeInvalidSortType,
		model.ErrCodeInvalidWeight, model.ErrCodeInvalidUnit, model.ErrCodeInvalidDeviceID,
		model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeHistoryNotReady:
		return http.StatusConflict
	case model.ErrCodeDataUnavailable:
		return http.StatusServiceUnavailable
	case model.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case model.ErrCodeExportFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
