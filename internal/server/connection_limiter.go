package server

import (
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// LimitReason labels why an upgrade attempt was turned away.
type LimitReason string

const (
	ReasonGlobalLimit LimitReason = "global_limit"
	ReasonPerIPLimit  LimitReason = "per_ip_limit"
	ReasonRateLimit   LimitReason = "rate_limit"
)

// ConnectionLimits guards the WebSocket endpoint with three gates: a global
// connection cap, a per-IP cap, and a token-bucket rate on new upgrades.
type ConnectionLimits struct {
	maxGlobal int64
	maxPerIP  int

	current atomic.Int64

	mu    sync.Mutex
	perIP map[string]int

	limiter *rate.Limiter
}

func NewConnectionLimits(maxGlobal int64, maxPerIP int, ratePerSecond float64, burst int) *ConnectionLimits {
	return &ConnectionLimits{
		maxGlobal: maxGlobal,
		maxPerIP:  maxPerIP,
		perIP:     make(map[string]int),
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Acquire reserves a connection slot for the given IP. On refusal it returns
// the reason and leaves all counters untouched.
func (l *ConnectionLimits) Acquire(ip string) (bool, LimitReason) {
	if !l.limiter.Allow() {
		return false, ReasonRateLimit
	}

	if l.current.Add(1) > l.maxGlobal {
		l.current.Add(-1)
		return false, ReasonGlobalLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.perIP[ip] >= l.maxPerIP {
		l.current.Add(-1)
		return false, ReasonPerIPLimit
	}
	l.perIP[ip]++

	return true, ""
}

// Release returns a slot previously taken by Acquire.
func (l *ConnectionLimits) Release(ip string) {
	l.current.Add(-1)

	l.mu.Lock()
	defer l.mu.Unlock()
	if n := l.perIP[ip]; n <= 1 {
		delete(l.perIP, ip)
	} else {
		l.perIP[ip] = n - 1
	}
}

// Current reports the number of held slots.
func (l *ConnectionLimits) Current() int64 {
	return l.current.Load()
}
