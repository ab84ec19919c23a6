package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

// FixedWindowLimiter counts requests per client IP inside a fixed time
// window. The checkout form is the only public write surface, so a coarse
// per-IP window is enough.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	frame   time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowLimiter(limit int, frame time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		frame:   frame,
	}
}

// Allow reports whether the client may proceed; when denied it also returns
// how long until the window resets.
func (rl *FixedWindowLimiter) Allow(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[ip]
	if !ok || now.After(w.resetAt) {
		rl.windows[ip] = &window{count: 1, resetAt: now.Add(rl.frame)}
		return true, 0
	}
	if w.count < rl.limit {
		w.count++
		return true, 0
	}
	return false, time.Until(w.resetAt)
}
