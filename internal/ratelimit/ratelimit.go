// Package ratelimit throttles requests per client with one token bucket per
// key. State lives in an explicit Store so that servers and tests each own
// their limits.
package ratelimit

import (
	"context"
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UnknownClient is the key used when no client address can be determined.
const UnknownClient = "unknown"

// Result describes one admission decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Store holds a token bucket per client key.
type Store struct {
	mu        sync.Mutex
	buckets   map[string]*entry
	perMinute int
	burst     int
	now       func() time.Time
}

// NewStore allows requestsPerMinute sustained requests per key with bursts
// of up to burst. Non-positive values fall back to 60 and 1.
func NewStore(requestsPerMinute, burst int) *Store {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}
	if burst <= 0 {
		burst = 1
	}
	return &Store{
		buckets:   make(map[string]*entry),
		perMinute: requestsPerMinute,
		burst:     burst,
		now:       time.Now,
	}
}

// Allow takes one token from key's bucket if available.
func (s *Store) Allow(key string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.buckets[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Limit(float64(s.perMinute)/60), s.burst)}
		s.buckets[key] = e
	}
	e.lastSeen = now

	res := Result{Limit: s.perMinute}
	if e.limiter.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = int(math.Max(0, math.Floor(e.limiter.TokensAt(now))))
		return res
	}

	deficit := 1 - e.limiter.TokensAt(now)
	res.RetryAfter = time.Duration(deficit / float64(e.limiter.Limit()) * float64(time.Second))
	return res
}

// Cleanup forgets keys not seen for longer than idle and returns how many
// were removed.
func (s *Store) Cleanup(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for key, e := range s.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup(idle)
		}
	}
}

// ClientID identifies the caller by the first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote host.
func ClientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return UnknownClient
}

// Middleware rejects requests over the limit with 429 Too Many Requests.
func Middleware(store *Store, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := store.Allow(ClientID(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if res.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		retry := int(math.Ceil(res.RetryAfter.Seconds()))
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "Rate limit exceeded. Try again in " + strconv.Itoa(retry) + " seconds.",
		})
	})
}
