package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kuflow/kuflow-sdk-go/internal/api/response"
	"github.com/kuflow/kuflow-sdk-go/internal/logger"
)

// RateLimit returns a middleware that enforces a global token bucket. A
// non-positive rps disables it.
func RateLimit(rps float64, burst int) func(next http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("rate limit exceeded")

				tooManyRequests(w, retryAfter(limiter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientRateLimiter maintains per-client rate limiters
type ClientRateLimiter struct {
	limiters map[string]*clientLimiter
	rps      rate.Limit
	burst    int
	idle     time.Duration
	mu       sync.Mutex
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter creates a new per-client rate limiter
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters: make(map[string]*clientLimiter),
		rps:      rate.Limit(rps),
		burst:    max(burst, 1),
		idle:     5 * time.Minute,
	}
}

// GetLimiter returns the rate limiter for a client, dropping limiters that
// have been idle for a while.
func (crl *ClientRateLimiter) GetLimiter(clientID string) *rate.Limiter {
	crl.mu.Lock()
	defer crl.mu.Unlock()

	now := time.Now()
	for id, cl := range crl.limiters {
		if now.Sub(cl.lastSeen) > crl.idle {
			delete(crl.limiters, id)
		}
	}

	cl, exists := crl.limiters[clientID]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(crl.rps, crl.burst)}
		crl.limiters[clientID] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// ClientRateLimit limits each client separately. Clients are told apart by
// their basic auth username, falling back to the remote address.
func ClientRateLimit(rps float64, burst int) func(next http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := NewClientRateLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, _, ok := r.BasicAuth()
			if !ok {
				clientID = r.RemoteAddr
			}

			clientLimiter := limiter.GetLimiter(clientID)
			if !clientLimiter.Allow() {
				logger.Warn().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("client", clientID).
					Msg("client rate limit exceeded")

				tooManyRequests(w, retryAfter(clientLimiter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfter is the whole number of seconds until the next token, at least 1.
func retryAfter(limiter *rate.Limiter) int {
	r := limiter.Reserve()
	delay := r.Delay()
	r.Cancel()

	seconds := int(delay.Seconds())
	if delay > time.Duration(seconds)*time.Second {
		seconds++
	}
	return max(seconds, 1)
}

func tooManyRequests(w http.ResponseWriter, seconds int) {
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded")
}
