package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"auth-service/pkg/cache"
	"auth-service/pkg/response"
)

// banThreshold is how many window violations escalate to a temporary ban of
// the client identity.
const banThreshold = 3

// RateLimiter counts requests per client identity inside a sliding window.
// Route-specific limiters use distinct key prefixes so their counters never
// share state with the global one. Exceeding the limit rejects the request
// with retry metadata; the third violation inside the window bans the client
// for blockDuration. Store outages fail open.
func RateLimiter(store cache.Store, limit int, window, blockDuration time.Duration, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Prefer the authenticated identity, fall back to client IP.
			var clientID string
			if userID, ok := GetUserID(ctx); ok && userID != "" {
				clientID = "uid:" + userID
			} else {
				ip := r.Header.Get("X-Forwarded-For")
				if ip == "" {
					ip = r.RemoteAddr
				}
				clientID = "ip:" + strings.TrimSpace(strings.Split(ip, ",")[0])
			}

			blocked, err := store.Get(ctx, keyPrefix+"_blocked", clientID)
			if err == nil && blocked == "1" {
				ttl, _ := store.GetTTL(ctx, keyPrefix+"_blocked", clientID)
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+ttl.Round(time.Second).String())
				return
			}

			count, err := store.IncrWithExpire(ctx, keyPrefix, clientID, window)
			if err != nil {
				// Don't take traffic down with the counter store.
				next.ServeHTTP(w, r)
				return
			}

			if count > int64(limit) {
				violations, _ := store.IncrWithExpire(ctx, keyPrefix+"_viol", clientID, window)

				retryAfter := window
				if ttl, err := store.GetTTL(ctx, keyPrefix, clientID); err == nil && ttl > 0 {
					retryAfter = ttl
				}
				if violations >= banThreshold {
					_ = store.Set(ctx, keyPrefix+"_blocked", clientID, "1", blockDuration)
					retryAfter = blockDuration
				}

				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Too Many Requests. Try again in "+retryAfter.Round(time.Second).String())
				return
			}

			remaining := limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if ttl, err := store.GetTTL(ctx, keyPrefix, clientID); err == nil && ttl > 0 {
				w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))
			}

			next.ServeHTTP(w, r)
		})
	}
}
