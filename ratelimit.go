package main

import (
	"context"
	"sync"
	"time"
)

// ipRateLimiter tracks last connection time per IP to prevent abuse
type ipRateLimiter struct {
	cooldown time.Duration
	now      func() time.Time

	mu    sync.Mutex
	times map[string]time.Time
}

func newIPRateLimiter(cooldown time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		cooldown: cooldown,
		now:      time.Now,
		times:    make(map[string]time.Time),
	}
}

// allow returns true if this IP can connect, and records the attempt
func (rl *ipRateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	if last, ok := rl.times[ip]; ok && now.Sub(last) < rl.cooldown {
		return false
	}
	rl.times[ip] = now
	return true
}

// sweep drops entries older than the cooldown
func (rl *ipRateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.cooldown)
	for ip, t := range rl.times {
		if t.Before(cutoff) {
			delete(rl.times, ip)
		}
	}
}

// runCleanup sweeps stale entries every minute until ctx is cancelled
func (rl *ipRateLimiter) runCleanup(ctx context.Context) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}
