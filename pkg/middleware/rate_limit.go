package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"spacebook/pkg/identity"
	"spacebook/pkg/logger"

	"golang.org/x/time/rate"
)

// KeyExtractor picks the bucket a request is charged to.
type KeyExtractor func(r *http.Request) string

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// the window are dropped by a background sweep.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	window  time.Duration
	keyOf   KeyExtractor
	log     *logger.Logger
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter allows requests per window, refilled continuously, with the given burst.
func NewRateLimiter(requests int, window time.Duration, burst int, keyOf KeyExtractor, log *logger.Logger) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if keyOf == nil {
		keyOf = RemoteAddrKey
	}
	rl := &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		window:  window,
		keyOf:   keyOf,
		log:     log,
		stopCh:  make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, e := range rl.entries {
				if now.Sub(e.lastSeen) > rl.window {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) reserve(key string) *rate.Reservation {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Reserve()
}

// Allow reports whether key may proceed now and, if not, how long to wait.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	res := rl.reserve(key)
	if !res.OK() {
		return false, rl.window
	}
	delay := res.Delay()
	if delay == 0 {
		return true, 0
	}
	res.Cancel()
	return false, delay
}

func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.keyOf(r)
			ok, retryAfter := limiter.Allow(key)
			if !ok {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter/time.Second)+1))
				writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RemoteAddrKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequesterKey charges authenticated calls to the requester and anonymous
// ones to the client address.
func RequesterKey(r *http.Request) string {
	if requester := identity.FromContext(r.Context()); !requester.Anonymous() {
		return "user:" + requester.ID
	}
	return "addr:" + RemoteAddrKey(r)
}
