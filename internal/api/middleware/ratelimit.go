package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dom/roleplay-api/internal/api/respond"
	"github.com/dom/roleplay-api/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var errTooManyRequests = domain.NewError(http.StatusTooManyRequests, domain.CodeTooManyRequests, "too many requests, try again later")

// ipLimiter keeps one token bucket per client IP.
type ipLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (l *ipLimiter) get(key string) *rate.Limiter {
	if limiter, ok := l.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	actual, _ := l.limiters.LoadOrStore(key, rate.NewLimiter(l.rate, l.burst))
	l.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops idle limiters (full buckets) every few minutes.
func (l *ipLimiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < 5*time.Minute {
		return
	}
	l.lastCleanup = time.Now()

	l.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(l.burst) {
			l.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitByIP allows requests requests per window from each client IP,
// all of them available as a burst. A non-positive requests disables it.
func RateLimitByIP(requests int, window time.Duration, logger *zap.Logger) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := &ipLimiter{
		rate:        rate.Limit(float64(requests) / window.Seconds()),
		burst:       requests,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			limiter := l.get(key)

			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(max(int(delay.Seconds()), 1)))
				logger.Warn("rate limit exceeded",
					zap.String("key", key),
					zap.String("path", r.URL.Path))
				respond.Error(w, logger, errTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP keys on RemoteAddr only. chi's RealIP has already applied any
// proxy headers by the time this runs.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
