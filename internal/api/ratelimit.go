package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// loginLimiter applies a per-user token bucket to login attempts so a leaked
// bearer token cannot brute-force Garmin credentials through this service.
type loginLimiter struct {
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

func newLoginLimiter(r rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{
		rate:     r,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// TODO: evict buckets idle for more than an hour.
func (l *loginLimiter) allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
