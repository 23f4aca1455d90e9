package api

import (
	"net"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
)

// clientLimiter keeps one token bucket per client address. The table is an
// LRU so that memory stays bounded however many clients show up.
type clientLimiter struct {
	mu      sync.Mutex
	buckets *lru.Cache
	rps     rate.Limit
	burst   int
}

// newClientLimiter returns nil when rate limiting is disabled (rps <= 0).
func newClientLimiter(cfg config.RateLimitConfig) (*clientLimiter, error) {
	if cfg.RPS <= 0 {
		return nil, nil
	}
	size := cfg.Clients
	if size <= 0 {
		size = 1024
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	buckets, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &clientLimiter{buckets: buckets, rps: rate.Limit(cfg.RPS), burst: burst}, nil
}

// allow reports whether client may issue one more request now.
func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.buckets.Get(client); ok {
		return v.(*rate.Limiter).Allow()
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.buckets.Add(client, limiter)
	return limiter.Allow()
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware rejects clients that exceed their token bucket.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.allow(clientKey(r)) {
			if s.metrics != nil {
				s.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
