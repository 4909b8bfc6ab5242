package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/planthead/planthead-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after exceeding the limit
	BlockedIPDuration = 15 * time.Minute
)

// RedisRateLimit is a fixed-window per-IP limiter shared by every instance
// through Redis. It fails open when Redis is unavailable.
type RedisRateLimit struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimit(client *redis.Client) *RedisRateLimit {
	return &RedisRateLimit{client: client, limit: RateLimitMaxRequests, window: RateLimitWindow}
}

func (l *RedisRateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientip.RealClientIP(r)

		blocked, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
		if err == nil && blocked > 0 {
			writeTooMany(w, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		key := RateLimitKeyPrefix + ip
		pipe := l.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Printf("⚠️  Rate limiter unavailable, allowing request: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		count := int(incr.Val())
		if count > l.limit {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", BlockedIPDuration).Err(); err != nil {
				log.Printf("⚠️  Failed to block IP %s: %v", ip, err)
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			writeTooMany(w, fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", int(l.window.Seconds())))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(l.limit-count))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(l.window).Unix(), 10))

		next.ServeHTTP(w, r)
	})
}

func writeTooMany(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	fmt.Fprintf(w, `{"success":false,"message":%q}`, message)
}
