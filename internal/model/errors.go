// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: device, validation, product, history, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidBarcode    = "INVALID_BARCODE"
	ErrCodeInvalidProduct    = "INVALID_PRODUCT"
	ErrCodeInvalidSortType   = "INVALID_SORT_TYPE"
	ErrCodeInvalidWeight     = "INVALID_WEIGHT"
	ErrCodeInvalidUnit       = "INVALID_UNIT"
	ErrCodeDataUnavailable   = "DATA_UNAVAILABLE"
	ErrCodeExportFailed      = "EXPORT_FAILED"
	ErrCodeHistoryNotReady   = "HISTORY_NOT_READY"
	ErrCodeEntryNotFound     = "HISTORY_ENTRY_NOT_FOUND"
	ErrCodeInvalidDeviceID   = "INVALID_DEVICE_ID"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
)

// NewProductNotFoundError は製品未検出エラーを生成する。
func NewProductNotFoundError(barcode string) *APIError {
	return &APIError{
		Code:     ErrCodeProductNotFound,
		Message:  fmt.Sprintf("指定された製品が見つかりません: %s", barcode),
		Category: "product",
		Action:   "バーコードを確認し、製品データを登録してから再度お試しください。",
	}
}

// NewInvalidBarcodeError は無効なバーコードエラーを生成する。
func NewInvalidBarcodeError(barcode string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBarcode,
		Message:  fmt.Sprintf("無効なバーコードです: %q", barcode),
		Category: "validation",
		Action:   "空でないバーコードを指定してください。",
	}
}

// NewInvalidProductError は製品データが不正な場合のエラーを生成する。
func NewInvalidProductError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidProduct,
		Message:  fmt.Sprintf("製品データが不正です: %s", reason),
		Category: "validation",
		Action:   "製品データの形式を確認してください。",
	}
}

// NewInvalidSortTypeError は無効なソート種別エラーを生成する。
func NewInvalidSortTypeError(sortType string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSortType,
		Message:  fmt.Sprintf("無効なソート種別です: %s", sortType),
		Category: "validation",
		Action:   "利用可能なソート種別から選択してください。",
	}
}

// NewInvalidWeightError は重量入力が数値でない場合のエラーを生成する。
func NewInvalidWeightError(weight string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidWeight,
		Message:  fmt.Sprintf("重量を数値で入力してください: %q", weight),
		Category: "validation",
		Action:   "0より大きい数値を入力してください。",
	}
}

// NewInvalidUnitError は未対応の単位エラーを生成する。
func NewInvalidUnitError(unit string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUnit,
		Message:  fmt.Sprintf("未対応の単位です: %s", unit),
		Category: "validation",
		Action:   "g、kg、mg、ml、cl、l、oz のいずれかを指定してください。",
	}
}

// NewDataUnavailableError は履歴データの取得失敗エラーを生成する。
func NewDataUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeDataUnavailable,
		Message:  "スキャン履歴を取得できませんでした。",
		Category: "history",
		Action:   "しばらく待ってから再読み込みしてください。",
	}
}

// NewExportFailedError はCSVエクスポートの書き込み失敗エラーを生成する。
func NewExportFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeExportFailed,
		Message:  fmt.Sprintf("履歴のエクスポートに失敗しました: %s", reason),
		Category: "history",
		Action:   "保存先を確認して再度お試しください。",
	}
}

// NewHistoryNotReadyError は履歴が操作可能な状態でない場合のエラーを生成する。
func NewHistoryNotReadyError() *APIError {
	return &APIError{
		Code:     ErrCodeHistoryNotReady,
		Message:  "スキャン履歴はまだ読み込まれていません。",
		Category: "history",
		Action:   "履歴の読み込み完了後に再度お試しください。",
	}
}

// NewEntryNotFoundError は履歴エントリ未検出エラーを生成する。
func NewEntryNotFoundError(barcode string) *APIError {
	return &APIError{
		Code:     ErrCodeEntryNotFound,
		Message:  fmt.Sprintf("指定された履歴が見つかりません: %s", barcode),
		Category: "history",
		Action:   "履歴を再読み込みしてください。",
	}
}

// NewInvalidDeviceIDError は端末IDが不正な場合のエラーを生成する。
func NewInvalidDeviceIDError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDeviceID,
		Message:  "端末IDが指定されていないか、形式が不正です。",
		Category: "device",
		Action:   "X-Device-ID ヘッダーにUUID形式の端末IDを指定してください。",
	}
}

// NewInvalidRequestError はリクエストボディが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  reason,
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}
