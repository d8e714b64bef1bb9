package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "nexus:ratelimit"

// NewRateLimiter limits requests per client IP. rateFormatted follows the
// limiter notation ("300-M" = 300/min); empty disables limiting. Counters live
// in Redis when client is set so every replica shares them, otherwise in memory.
func NewRateLimiter(rateFormatted string, client *redis.Client) (gin.HandlerFunc, error) {
	if rateFormatted == "" {
		return func(c *gin.Context) { c.Next() }, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   rateLimitPrefix,
			MaxRetry: 3,
		})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithLimitReachedHandler(limitReached),
		mgin.WithErrorHandler(limitFailedOpen),
	), nil
}

func limitReached(c *gin.Context) {
	zerolog.Ctx(c.Request.Context()).Warn().Str("client_ip", c.ClientIP()).Msg("rate limit exceeded")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many requests"})
}

// limitFailedOpen serves the request when the counter store is unreachable.
func limitFailedOpen(c *gin.Context, err error) {
	zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("rate limit store unavailable")
	c.Next()
}
