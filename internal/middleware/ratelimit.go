package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"notification-relay/internal/response"
)

// RateLimit is a Redis-backed fixed-window limiter keyed by client IP.
// A nil client disables limiting; Redis errors fail open so the broker
// pipeline never depends on Redis availability.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			key := fmt.Sprintf("ratelimit:%s:%s", scope, ip)

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}
			if count > int64(limit) {
				response.WriteFault(w, http.StatusTooManyRequests, "429", "Too many requests", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
