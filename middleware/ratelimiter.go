package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

var defaultRate = limiter.Rate{
	Period: 1 * time.Minute,
	Limit:  100,
}

// RateLimiter limits requests per client IP. Counters live in Redis when a
// client is given so every replica shares them, in memory otherwise.
func RateLimiter(rdb *redis.Client, log *zap.SugaredLogger) gin.HandlerFunc {
	var store limiter.Store = memory.NewStore()
	if rdb != nil {
		s, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
			Prefix:   "temple_waste_limiter",
			MaxRetry: 3,
		})
		if err != nil {
			log.Warnw("redis limiter store unavailable, using memory", "err", err)
		} else {
			store = s
		}
	}

	instance := limiter.New(store, defaultRate)
	return ginlimiter.NewMiddleware(instance, ginlimiter.WithKeyGetter(GetClientIP))
}
