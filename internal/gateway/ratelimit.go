package gateway

import (
	"sync"

	"golang.org/x/time/rate"
)

// connLimiter gives each connection its own token bucket for inbound
// player_input frames, separate from the per-session agent-call timeout:
// this caps how fast a single client can push input, not how long the
// Game Master takes to answer.
type connLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newConnLimiter(perSecond float64, burst int) *connLimiter {
	return &connLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *connLimiter) allow(connID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[connID]
	if !ok {
		lim = rate.NewLimiter(l.r, l.burst)
		l.limiters[connID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *connLimiter) forget(connID string) {
	l.mu.Lock()
	delete(l.limiters, connID)
	l.mu.Unlock()
}
