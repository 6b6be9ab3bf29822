// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/sasquatch/internal/app/system/normalize"
)

// Limiter counts requests per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per period.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

// Run sweeps expired windows every interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RegisterLimiter throttles registration requests per client IP and per
// email address.
type RegisterLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewRegisterLimiter returns a limiter with the default budget:
// 20 requests per IP per minute and 3 per email per 10 minutes.
func NewRegisterLimiter() *RegisterLimiter {
	return NewRegisterLimiterWithConfig(20, time.Minute, 3, 10*time.Minute)
}

// NewRegisterLimiterWithConfig creates a registration limiter with custom limits.
func NewRegisterLimiterWithConfig(ipLimit int, ipPeriod time.Duration, emailLimit int, emailPeriod time.Duration) *RegisterLimiter {
	return &RegisterLimiter{
		ip:    New(ipLimit, ipPeriod),
		email: New(emailLimit, emailPeriod),
	}
}

// Check records an attempt and reports whether it may proceed. When it may
// not, reason is a message suitable for the client.
func (rl *RegisterLimiter) Check(r *http.Request, email string) (ok bool, reason string) {
	if !rl.ip.Allow(ClientIP(r)) {
		return false, "too many registration requests, try again in a minute"
	}
	if key := normalize.Email(email); key != "" {
		if !rl.email.Allow(key) {
			return false, "too many registration requests for this email, try again later"
		}
	}
	return true, ""
}

// Run sweeps both limiters until ctx is done.
func (rl *RegisterLimiter) Run(ctx context.Context, interval time.Duration) {
	go rl.ip.Run(ctx, interval)
	rl.email.Run(ctx, interval)
}
