package middleware

import "net/http"

// corsAllowedHeaders はプリフライトで許可するリクエストヘッダー。
const corsAllowedHeaders = "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Destroy-Signature"

// NewCORSMiddleware は指定されたオリジンに対するCORSミドルウェアを返す。
// ルーティングより前に配置し、すべてのレスポンスにヘッダーを付与する。
// OPTIONSプリフライトリクエストには後続を呼ばずに200と空のJSONオブジェクトで応答する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			w.Header().Set("Access-Control-Expose-Headers", "RateLimit-Limit, RateLimit-Remaining, RateLimit-Reset, Retry-After")
			w.Header().Set("Access-Control-Max-Age", "86400")
			// ワイルドカードとcredentialsは併用できない
			if allowedOrigin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				WriteJSON(w, http.StatusOK, struct{}{})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
