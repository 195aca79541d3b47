package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"agrimarket-be/internal/utils"

	"golang.org/x/time/rate"
)

// Rate Limit Tiers
const (
	// Login (Strict)
	limitStrict = rate.Limit(2)
	burstStrict = 5

	// Listing writes and uploads
	limitWrite = rate.Limit(5)
	burstWrite = 10

	// General (Default)
	limitGeneral = rate.Limit(10)
	burstGeneral = 20

	// Internal / trusted services
	limitInternal = rate.Limit(100)
	burstInternal = 200
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller and tier.
type RateLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	internalKey string
	now         func() time.Time
}

func NewRateLimiter(internalKey string) *RateLimiter {
	return &RateLimiter{
		visitors:    make(map[string]*visitor),
		internalKey: internalKey,
		now:         time.Now,
	}
}

func (rl *RateLimiter) get(key string, r rate.Limit, b int) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(r, b)}
		rl.visitors[key] = v
	}
	v.lastSeen = rl.now()
	return v.limiter
}

// Cleanup drops buckets idle for longer than the visitor TTL.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-visitorTTL)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
		}
	}
}

// Run calls Cleanup every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, burst, tier := rl.resolveTier(r)

		var identity string
		if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
			identity = fmt.Sprintf("user:%d", userID)
		} else {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			identity = "ip:" + ip
		}

		// Separate quotas per tier, e.g. "user:1:strict".
		key := identity + ":" + tier

		if !rl.get(key, limit, burst).Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) resolveTier(r *http.Request) (rate.Limit, int, string) {
	if rl.internalKey != "" && r.Header.Get("X-Service-Auth") == rl.internalKey {
		return limitInternal, burstInternal, "internal"
	}

	if r.URL.Path == "/auth/login" || r.URL.Path == "/api/auth/login" {
		return limitStrict, burstStrict, "strict"
	}

	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return limitWrite, burstWrite, "write"
	}

	return limitGeneral, burstGeneral, "general"
}
