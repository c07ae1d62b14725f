// Package ratelimit provides token-bucket limiters keyed by an arbitrary
// string, such as a chat user id.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config defines the rate limiting parameters.
type Config struct {
	// RequestsPerWindow is the number of events allowed in the time window
	RequestsPerWindow int
	// Window is the time window for rate limiting
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit
	Burst int
}

// Disabled reports whether the configuration turns limiting off.
func (c Config) Disabled() bool {
	return c.RequestsPerWindow <= 0 || c.Window <= 0
}

// Keyed manages one token bucket per key. Buckets that have refilled
// completely are dropped periodically so ephemeral keys do not accumulate.
type Keyed struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	disabled bool

	mu              sync.Mutex
	lastCleanup     time.Time
	cleanupInterval time.Duration
}

// NewKeyed creates a keyed limiter. A disabled config allows everything.
func NewKeyed(cfg Config) *Keyed {
	k := &Keyed{
		disabled:        cfg.Disabled(),
		lastCleanup:     time.Now(),
		cleanupInterval: 5 * time.Minute,
	}
	if k.disabled {
		return k
	}

	k.rate = rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds())
	k.burst = max(cfg.Burst, 1)
	return k
}

// Allow reports whether an event for key may happen now. When it may not,
// retryAfter is the wait until the next token.
func (k *Keyed) Allow(key string) (allowed bool, retryAfter time.Duration) {
	if k.disabled {
		return true, 0
	}

	limiter := k.limiter(key)
	if limiter.Allow() {
		return true, 0
	}

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel() // don't actually consume the reservation

	return false, delay
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	n := 0
	k.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (k *Keyed) limiter(key string) *rate.Limiter {
	if limiter, ok := k.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	actual, _ := k.limiters.LoadOrStore(key, rate.NewLimiter(k.rate, k.burst))
	k.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose buckets are full, i.e. idle keys.
func (k *Keyed) maybeCleanup() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if time.Since(k.lastCleanup) < k.cleanupInterval {
		return
	}
	k.lastCleanup = time.Now()

	k.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(k.burst) {
			k.limiters.Delete(key)
		}
		return true
	})
}
