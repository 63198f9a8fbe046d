// Package middleware はHTTPミドルウェアとルート単位のリクエストパイプラインを提供する。
package middleware

import (
	"context"
	"fmt"

	"github.com/hilalmustofa/simpleolshop/internal/model"
	"github.com/hilalmustofa/simpleolshop/internal/upload"
	"github.com/hilalmustofa/simpleolshop/internal/validation"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	claimsContextKey = contextKey("claims")
	uploadContextKey = contextKey("upload")
	formContextKey   = contextKey("form")
	fieldsContextKey = contextKey("fields")
)

// ContextWithClaims はコンテキストに検証済みトークンのクレームを注入する。
func ContextWithClaims(ctx context.Context, claims *model.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext はBearerAuthステージで注入されたクレームを取得する。
func ClaimsFromContext(ctx context.Context) (*model.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*model.Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return claims.UserID, nil
}

// ContextWithUpload はコンテキストに保存済みファイルとmultipartのテキストフィールドを注入する。
func ContextWithUpload(ctx context.Context, file *upload.StoredFile, form map[string]string) context.Context {
	ctx = context.WithValue(ctx, uploadContextKey, file)
	return context.WithValue(ctx, formContextKey, form)
}

// UploadFromContext はUploadステージで保存されたファイルを取得する。
func UploadFromContext(ctx context.Context) (*upload.StoredFile, bool) {
	f, ok := ctx.Value(uploadContextKey).(*upload.StoredFile)
	return f, ok && f != nil
}

// FormFromContext はUploadステージで読み取ったテキストフィールドを取得する。
func FormFromContext(ctx context.Context) map[string]string {
	form, _ := ctx.Value(formContextKey).(map[string]string)
	return form
}

// ContextWithFields はコンテキストに検証済みの入力値を注入する。
func ContextWithFields(ctx context.Context, fields validation.Fields) context.Context {
	return context.WithValue(ctx, fieldsContextKey, fields)
}

// FieldsFromContext は検証ステージを通過した入力値を取得する。
func FieldsFromContext(ctx context.Context) (validation.Fields, bool) {
	fields, ok := ctx.Value(fieldsContextKey).(validation.Fields)
	return fields, ok
}
