package security

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles registration attempts per caller using a fixed
// one-minute Redis window. Authenticated callers are keyed by user id,
// anonymous ones by IP.
type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{redis: redisClient, perMinute: perMinute}
}

// Allow counts one attempt for the caller and reports whether it fits
// inside the current window. A Redis error is returned so the caller can
// decide to fail open.
func (r *RateLimiter) Allow(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf("ratelimit:register:%s", id)

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		r.redis.Expire(ctx, key, time.Minute)
	}

	return count <= int64(r.perMinute), nil
}

// RegistrationLimit is bound on the registration route.
func (r *RateLimiter) RegistrationLimit() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		ok, err := r.Allow(e.Request.Context(), r.identify(e))
		if err != nil {
			// Redis being down must not take registration down with it.
			return e.Next()
		}
		if !ok {
			return apis.NewApiError(http.StatusTooManyRequests, "Too many registration attempts. Please try again later.", nil)
		}

		return e.Next()
	}
}

func (r *RateLimiter) identify(e *core.RequestEvent) string {
	if e.Auth != nil {
		return "user:" + e.Auth.Id
	}
	if host, _, err := net.SplitHostPort(e.Request.RemoteAddr); err == nil {
		return host
	}
	return e.Request.RemoteAddr
}
