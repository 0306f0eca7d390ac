package middlewares

import (
	"net/http"
	"time"

	"civicfix-be/config"

	"github.com/gin-gonic/gin"
)

// IssueRateLimiter caps how many issues one identity may create per day.
// Counters live in Redis keyed per user with a 24h TTL.
func IssueRateLimiter(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := Identity(c)
		if identity == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No verified identity"})
			c.Abort()
			return
		}

		ctx := config.Ctx
		userKey := "issue-limit:" + identity

		count, err := config.RedisClient.Incr(ctx, userKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// TTL starts with the first report of the day.
		if count == 1 {
			if err := config.RedisClient.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
