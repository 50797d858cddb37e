package http

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 10 * time.Minute
	limiterSweepEach = time.Minute
)

// RateRecorder counts rejected requests.
type RateRecorder interface {
	RateLimitHit()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key (requester or client address).
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	recorder RateRecorder
	now      func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

// NewRateLimiter allows perMinute requests per key with a small burst. A
// non-positive perMinute disables limiting.
func NewRateLimiter(perMinute int, recorder RateRecorder) *RateLimiter {
	rl := &RateLimiter{
		recorder: recorder,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
	if perMinute > 0 {
		rl.limit = rate.Every(time.Minute / time.Duration(perMinute))
		rl.burst = min(perMinute, 5)
	}
	return rl
}

// Allow reports whether key may proceed now and consumes a token if so.
func (rl *RateLimiter) Allow(key string) bool {
	if rl == nil || rl.burst == 0 {
		return true
	}

	rl.mu.Lock()
	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	if now.Sub(rl.lastSweep) >= limiterSweepEach {
		rl.sweepLocked(now)
	}
	allowed := v.limiter.AllowN(now, 1)
	rl.mu.Unlock()

	if !allowed && rl.recorder != nil {
		rl.recorder.RateLimitHit()
	}
	return allowed
}

func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(rl.visitors, key)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
