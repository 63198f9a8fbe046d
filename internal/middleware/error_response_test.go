package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

// TestWriteAPIError_WritesUnifiedFormat は統一エラーフォーマットでレスポンスが書き込まれることを検証する。
func TestWriteAPIError_WritesUnifiedFormat(t *testing.T) {
	w := httptest.NewRecorder()

	WriteAPIError(w, model.NewValidationError("name length should be 3 to 50 characters"))

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Code != http.StatusBadRequest {
		t.Errorf("code = %d, want %d", body.Code, http.StatusBadRequest)
	}
	if body.Error != model.ErrCodeValidationFailed {
		t.Errorf("error = %q, want %q", body.Error, model.ErrCodeValidationFailed)
	}
	if body.Message != "name length should be 3 to 50 characters" {
		t.Errorf("message = %q", body.Message)
	}
}

// TestStatusFor はエラーコードとHTTPステータスの対応を検証する。
func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{model.ErrCodeValidationFailed, http.StatusBadRequest},
		{model.ErrCodeInvalidRequest, http.StatusBadRequest},
		{model.ErrCodeTokenMissing, http.StatusUnauthorized},
		{model.ErrCodeTokenInvalid, http.StatusUnauthorized},
		{model.ErrCodeTokenExpired, http.StatusUnauthorized},
		{model.ErrCodeIncorrectPassword, http.StatusUnauthorized},
		{model.ErrCodeForbiddenSignature, http.StatusForbidden},
		{model.ErrCodeDuplicateProductName, http.StatusForbidden},
		{model.ErrCodeEmailAlreadyRegistered, http.StatusUnprocessableEntity},
		{model.ErrCodeProductNotFound, http.StatusNotFound},
		{model.ErrCodeNoProducts, http.StatusNotFound},
		{model.ErrCodeUploadMissing, http.StatusUnprocessableEntity},
		{model.ErrCodeUnsupportedFileType, http.StatusUnprocessableEntity},
		{model.ErrCodeUploadFailed, http.StatusInternalServerError},
		{model.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{"SOMETHING_UNKNOWN", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := StatusFor(tt.code); got != tt.want {
				t.Errorf("StatusFor(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

// TestInternalServerError_ReturnsGenericMessage は内部エラーの詳細がレスポンスに含まれないことを検証する。
func TestInternalServerError_ReturnsGenericMessage(t *testing.T) {
	w := httptest.NewRecorder()

	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	if body.Error != model.ErrCodeInternal {
		t.Errorf("error = %q, want %q", body.Error, model.ErrCodeInternal)
	}
	if body.Message != "Internal server error" {
		t.Errorf("message = %q, want %q", body.Message, "Internal server error")
	}
}

// TestErrorResponseBody_AllFieldsPresent はJSONにすべてのフィールドが含まれることを検証する。
func TestErrorResponseBody_AllFieldsPresent(t *testing.T) {
	w := httptest.NewRecorder()
	WriteAPIError(w, model.NewProductNotFoundError())

	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}

	for _, field := range []string{"code", "error", "message"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("field %q is missing in response", field)
		}
	}
	if raw["code"] != float64(http.StatusNotFound) {
		t.Errorf("code = %v, want %d", raw["code"], http.StatusNotFound)
	}
}
