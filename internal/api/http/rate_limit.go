package http

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// rateLimiters tracks one token bucket per client IP. Entries are
// created lazily and never expire; the auth surface is small enough
// that the map stays bounded in practice.
type rateLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newRateLimiters(perSecond float64, burst int) *rateLimiters {
	return &rateLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (r *rateLimiters) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	limiter, ok := r.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[key] = limiter
	}
	return limiter
}

// RateLimitMiddleware throttles requests per client IP. It is applied
// to credential endpoints only.
func RateLimitMiddleware(perSecond float64, burst int) fiber.Handler {
	limiters := newRateLimiters(perSecond, burst)
	return func(c *fiber.Ctx) error {
		if !limiters.get(c.IP()).Allow() {
			return apperrors.NewDomainError("RATE_LIMITED", "too many requests", fiber.StatusTooManyRequests, nil)
		}
		return c.Next()
	}
}
