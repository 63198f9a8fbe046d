package middleware

import (
	"net/http"
	"sync"
	"time"
)

// mockCollector はmetrics.MetricsCollectorのテスト用実装。
type mockCollector struct {
	mu         sync.Mutex
	requests   []string
	rejections []string
	uploads    []string
	orders     int
	lastStatus int
}

func (m *mockCollector) RecordHTTPRequest(route, method string, statusCode int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, method+" "+route)
	m.lastStatus = statusCode
}

func (m *mockCollector) RecordRateLimitRejection(limiter string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections = append(m.rejections, limiter)
}

func (m *mockCollector) RecordUpload(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, outcome)
}

func (m *mockCollector) RecordOrderCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders++
}

// okHandler は呼び出し回数を数えて200を返すハンドラ。
type okHandler struct {
	calls int
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.WriteHeader(http.StatusOK)
}
