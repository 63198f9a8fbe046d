// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Code は機械判定用の安定したエラーコードで、HTTPステータスへの変換に使用する。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeTokenMissing           = "TOKEN_MISSING"
	ErrCodeTokenInvalid           = "TOKEN_INVALID"
	ErrCodeTokenExpired           = "TOKEN_EXPIRED"
	ErrCodeEmailNotRegistered     = "EMAIL_NOT_REGISTERED"
	ErrCodeIncorrectPassword      = "INCORRECT_PASSWORD"
	ErrCodeForbiddenSignature     = "FORBIDDEN_SIGNATURE"
	ErrCodeDuplicateProductName   = "DUPLICATE_PRODUCT_NAME"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeNoProducts             = "NO_PRODUCTS"
	ErrCodeUploadMissing          = "UPLOAD_MISSING"
	ErrCodeUnsupportedFileType    = "UNSUPPORTED_FILE_TYPE"
	ErrCodeUploadFailed           = "UPLOAD_FAILED"
	ErrCodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: fmt.Sprintf("Invalid request body: %s", reason),
	}
}

// NewValidationError はフィールド検証エラーを生成する。
// message には最初に違反したルールのメッセージをそのまま渡す。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: message,
	}
}

// NewTokenMissingError はBearerトークン未指定エラーを生成する。
func NewTokenMissingError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenMissing,
		Message: "Auth failed: bearer token is required",
	}
}

// NewTokenInvalidError は署名・構造が不正なトークンのエラーを生成する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenInvalid,
		Message: "Auth failed: token is invalid",
	}
}

// NewTokenExpiredError は有効期限切れトークンのエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:    ErrCodeTokenExpired,
		Message: "Auth failed: token has expired",
	}
}

// NewEmailNotRegisteredError はログイン時にメールアドレスが未登録の場合のエラーを生成する。
func NewEmailNotRegisteredError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailNotRegistered,
		Message: "Email is not registered",
	}
}

// NewIncorrectPasswordError はパスワード不一致のエラーを生成する。
func NewIncorrectPasswordError() *APIError {
	return &APIError{
		Code:    ErrCodeIncorrectPassword,
		Message: "Incorrect password",
	}
}

// NewForbiddenSignatureError は破壊的操作の署名ヘッダーが不正な場合のエラーを生成する。
func NewForbiddenSignatureError() *APIError {
	return &APIError{
		Code:    ErrCodeForbiddenSignature,
		Message: "Missing or invalid destroy signature",
	}
}

// NewDuplicateProductNameError は同名の商品が既に存在する場合のエラーを生成する。
func NewDuplicateProductNameError(name string) *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateProductName,
		Message: fmt.Sprintf("Product with name %q already exists", name),
	}
}

// NewEmailAlreadyRegisteredError はサインアップ時にメールアドレスが登録済みの場合のエラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailAlreadyRegistered,
		Message: "Email is already registered",
	}
}

// NewProductNotFoundError は商品未検出エラーを生成する。
func NewProductNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeProductNotFound,
		Message: "Product not found",
	}
}

// NewOrderNotFoundError は注文未検出エラーを生成する。
func NewOrderNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeOrderNotFound,
		Message: "Order not found",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewNoProductsError は一括削除の対象が存在しない場合のエラーを生成する。
func NewNoProductsError() *APIError {
	return &APIError{
		Code:    ErrCodeNoProducts,
		Message: "No products to delete",
	}
}

// NewUploadMissingError は必須の画像ファイルが添付されていない場合のエラーを生成する。
func NewUploadMissingError(field string) *APIError {
	return &APIError{
		Code:    ErrCodeUploadMissing,
		Message: fmt.Sprintf("File upload error: %s is required", field),
	}
}

// NewUnsupportedFileTypeError は許可されていないMIMEタイプのエラーを生成する。
func NewUnsupportedFileTypeError(maxSize int64) *APIError {
	return &APIError{
		Code:    ErrCodeUnsupportedFileType,
		Message: fmt.Sprintf("File format is not supported, only jpeg or png up to %s", formatSize(maxSize)),
	}
}

// formatSize はバイト数を割り切れる最大の単位（MB・KB・bytes）で表す。
func formatSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= kb && n%kb == 0:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// NewUploadFailedError はファイルサイズ超過または保存失敗のエラーを生成する。
func NewUploadFailedError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeUploadFailed,
		Message: fmt.Sprintf("File upload error: %s", reason),
	}
}

// NewRateLimitExceededError はレート制限超過エラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:    ErrCodeRateLimitExceeded,
		Message: "Too many requests, please try again later",
	}
}

// NewRouteNotFoundError は未定義のルートへのアクセスエラーを生成する。
func NewRouteNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: "Route not found",
	}
}

// NewMethodNotAllowedError は許可されていないHTTPメソッドのエラーを生成する。
func NewMethodNotAllowedError() *APIError {
	return &APIError{
		Code:    ErrCodeMethodNotAllowed,
		Message: "Method not allowed",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Internal server error",
	}
}
