package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"notemap-server/pkg/response"

	"github.com/go-redis/redis/v8"
)

// RateLimitMiddleware enforces a fixed per-minute request budget, counted in
// Redis so the limit holds across replicas. Keys are per user when the
// request is authenticated, per client IP otherwise.
func RateLimitMiddleware(client *redis.Client, requestsPerMinute int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := GetUserID(r)
			if subject == "" {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				subject = host
			}

			window := time.Now().Unix() / 60
			key := fmt.Sprintf("ratelimit:%s:%d", subject, window)

			count, err := client.Incr(r.Context(), key).Result()
			if err != nil {
				// Redis being down must not take the API with it.
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				client.Expire(r.Context(), key, time.Minute)
			}

			if count > int64(requestsPerMinute) {
				response.TooManyRequests(w, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
