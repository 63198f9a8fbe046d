package middleware

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc はリクエストからレート制限のクライアントキーを導出する。
type KeyFunc func(r *http.Request) string

// ClientIPKey はクライアントIPをキーとするKeyFuncを返す。
// trustProxyがtrueの場合はX-Forwarded-Forの先頭アドレスを優先する。
func ClientIPKey(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if trustProxy {
			if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
				first, _, _ := strings.Cut(xf, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			return host
		}
		return r.RemoteAddr
	}
}
