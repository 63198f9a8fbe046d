package ratelimit

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter はプロセス内のgo-cacheにカウンタを保持する固定ウィンドウ制限。
// 複数インスタンス間でカウンタは共有されない。
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int64
	window time.Duration
	now    func() time.Time
}

// NewMemoryLimiter はMemoryLimiterを生成する。
// 期限切れのカウンタはgo-cacheのjanitorが定期的に削除する。
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, time.Minute),
		max:    int64(max),
		window: window,
		now:    time.Now,
	}
}

// Allow はkeyの現在ウィンドウのカウントを1増やす。
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	start, end := window(now, l.window)
	ck := fmt.Sprintf("%s:%d", key, start.Unix())
	ttl := end.Sub(now)

	hits, err := l.incr(ck, ttl)
	if err != nil {
		return Result{}, err
	}
	return newResult(hits, l.max, ttl), nil
}

// incr はカウンタを原子的に増やす。存在しなければ1で作成する。
func (l *MemoryLimiter) incr(key string, ttl time.Duration) (int64, error) {
	for i := 0; i < 2; i++ {
		if err := l.c.Add(key, int64(1), ttl); err == nil {
			return 1, nil
		}
		n, err := l.c.IncrementInt64(key, 1)
		if err == nil {
			return n, nil
		}
		// Add と IncrementInt64 の間に期限切れになった場合は作り直す
	}
	return 0, fmt.Errorf("failed to increment rate limit counter %q", key)
}

// compile-time interface check
var _ Limiter = (*MemoryLimiter)(nil)
