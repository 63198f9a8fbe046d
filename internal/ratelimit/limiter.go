// Package ratelimit は固定ウィンドウ方式のリクエストカウンタを提供する。
// ウィンドウ境界（時刻をウィンドウ長で切り捨てた時刻）でカウントがリセットされる。
package ratelimit

import (
	"context"
	"time"
)

// Result は1回のカウント結果。
type Result struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	// Reset は現在のウィンドウが終了するまでの時間。
	Reset       time.Duration
	CurrentHits int64
}

// Limiter はクライアントキーごとの固定ウィンドウカウンタ。
type Limiter interface {
	// Allow はkeyのカウントを1増やし、上限以内かどうかを返す。
	Allow(ctx context.Context, key string) (Result, error)
}

// window は時刻nowを含むウィンドウの開始・終了時刻を返す。
func window(now time.Time, length time.Duration) (start, end time.Time) {
	start = now.Truncate(length)
	return start, start.Add(length)
}

func newResult(hits, max int64, reset time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:     hits <= max,
		Limit:       max,
		Remaining:   remaining,
		Reset:       reset,
		CurrentHits: hits,
	}
}
