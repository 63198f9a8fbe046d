package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// Code はHTTPステータス、Error は機械判定用のエラーコード。
type ErrorResponseBody struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusByCode はエラーコードとHTTPステータスの対応表。
var statusByCode = map[string]int{
	model.ErrCodeInvalidRequest:         http.StatusBadRequest,
	model.ErrCodeValidationFailed:       http.StatusBadRequest,
	model.ErrCodeTokenMissing:           http.StatusUnauthorized,
	model.ErrCodeTokenInvalid:           http.StatusUnauthorized,
	model.ErrCodeTokenExpired:           http.StatusUnauthorized,
	model.ErrCodeEmailNotRegistered:     http.StatusUnauthorized,
	model.ErrCodeIncorrectPassword:      http.StatusUnauthorized,
	model.ErrCodeForbiddenSignature:     http.StatusForbidden,
	model.ErrCodeDuplicateProductName:   http.StatusForbidden,
	model.ErrCodeEmailAlreadyRegistered: http.StatusUnprocessableEntity,
	model.ErrCodeProductNotFound:        http.StatusNotFound,
	model.ErrCodeOrderNotFound:          http.StatusNotFound,
	model.ErrCodeUserNotFound:           http.StatusNotFound,
	model.ErrCodeNoProducts:             http.StatusNotFound,
	model.ErrCodeNotFound:               http.StatusNotFound,
	model.ErrCodeUploadMissing:          http.StatusUnprocessableEntity,
	model.ErrCodeUnsupportedFileType:    http.StatusUnprocessableEntity,
	model.ErrCodeUploadFailed:           http.StatusInternalServerError,
	model.ErrCodeRateLimitExceeded:      http.StatusTooManyRequests,
	model.ErrCodeMethodNotAllowed:       http.StatusMethodNotAllowed,
	model.ErrCodeInternal:               http.StatusInternalServerError,
}

// StatusFor はエラーコードに対応するHTTPステータスを返す。
// 未知のコードは500として扱う。
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON はbodyをJSONとして書き込む。
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteAPIError は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	status := StatusFor(apiErr.Code)
	WriteJSON(w, status, ErrorResponseBody{
		Code:    status,
		Error:   apiErr.Code,
		Message: apiErr.Message,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError())
}
