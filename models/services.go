// stickybans/models/services.go
package models

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AuditSink delivers administrative audit entries to wherever staff read them.
type AuditSink interface {
	Log(ctx context.Context, title, message string) error
}

// --- Stateful Services ---

type RateLimiter struct {
	Mu       sync.RWMutex
	Limiters map[string]*rate.Limiter
	LastSeen map[string]time.Time

	every  time.Duration
	burst  int
	expire time.Duration
	stop   chan struct{}
}

// NewRateLimiter creates a per-client rate limiter and starts its pruning loop.
func NewRateLimiter(every time.Duration, burst int, prune, expire time.Duration) *RateLimiter {
	rl := &RateLimiter{
		Limiters: make(map[string]*rate.Limiter),
		LastSeen: make(map[string]time.Time),
		every:    every,
		burst:    burst,
		expire:   expire,
		stop:     make(chan struct{}),
	}
	go rl.cleanup(prune)
	return rl
}

// GetLimiter retrieves or creates a rate limiter for a given IP address.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.Mu.Lock()
	defer rl.Mu.Unlock()
	limiter, exists := rl.Limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(rl.every), rl.burst)
		rl.Limiters[ip] = limiter
	}
	rl.LastSeen[ip] = time.Now()
	return limiter
}

// Allow reports whether the client may make another request right now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.GetLimiter(ip).Allow()
}

// Stop ends the pruning loop.
func (rl *RateLimiter) Stop() {
	select {
	case <-rl.stop:
	default:
		close(rl.stop)
	}
}

// Prune drops limiters for clients not seen since the cutoff.
func (rl *RateLimiter) Prune(cutoff time.Time) int {
	rl.Mu.Lock()
	defer rl.Mu.Unlock()
	removed := 0
	for ip, lastSeen := range rl.LastSeen {
		if lastSeen.Before(cutoff) {
			delete(rl.Limiters, ip)
			delete(rl.LastSeen, ip)
			removed++
		}
	}
	return removed
}

// cleanup periodically removes old entries from the rate limiter maps.
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.Prune(time.Now().Add(-rl.expire))
		}
	}
}
