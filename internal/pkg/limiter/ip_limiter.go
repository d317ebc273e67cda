/*
Package limiter provides per-IP request rate limiting.

It keeps a token-bucket rate.Limiter per client IP and prunes buckets that
have refilled completely, so idle IPs do not accumulate in memory.
*/
package limiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"fadechat/internal/pkg/errs"
	"fadechat/internal/pkg/logx"
	"fadechat/internal/pkg/resp"

	"golang.org/x/time/rate"
)

// cleanupInterval is how often full buckets are pruned.
const cleanupInterval = 3 * time.Minute

// IPRateLimiter tracks one token bucket per client IP.
type IPRateLimiter struct {
	mu sync.RWMutex

	// limits maps a client IP to its limiter.
	limits map[string]*rate.Limiter

	// r is the sustained rate in events per second.
	r rate.Limit

	// b is the burst capacity.
	b int
}

// NewIPRateLimiter builds a limiter with rate r and burst b and starts the
// background pruning loop.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
	}

	go i.cleanUpVisitors()

	return i
}

// GetLimiter returns the limiter for ip, creating it on first sight.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	lim, exists := i.limits[ip]
	i.mu.RUnlock()

	if !exists {
		i.mu.Lock()
		lim, exists = i.limits[ip]
		if !exists {
			lim = rate.NewLimiter(i.r, i.b)
			i.limits[ip] = lim
		}
		i.mu.Unlock()
	}

	return lim
}

// cleanUpVisitors drops limiters whose bucket is back at full burst.
func (i *IPRateLimiter) cleanUpVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		i.mu.Lock()
		count := 0
		for ip, lim := range i.limits {
			if lim.TokensAt(time.Now()) >= float64(lim.Burst()) {
				delete(i.limits, ip)
				count++
			}
		}
		remaining := len(i.limits)
		i.mu.Unlock()

		logx.Info("Rate limiter cleanup finished",
			"removed", count,
			"remaining", remaining,
		)
	}
}

// ClientIP extracts the bare IP from an http.Request remote address.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	if ip == "" {
		ip = "unknown_ip"
	}

	return ip
}

// Middleware rejects requests over the limit with HTTP 429.
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.GetLimiter(ClientIP(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		next.ServeHTTP(w, r)
	})
}
