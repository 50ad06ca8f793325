package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/coursemart-backend/internal/config"
	"github.com/stemsi/coursemart-backend/internal/response"
)

// SubmitLimiter caps quiz submissions per student using a fixed window
// counter in Redis, so the limit holds across server replicas.
type SubmitLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewSubmitLimiter creates a SubmitLimiter allowing limit submissions per
// window. A limit of 0 disables limiting.
func NewSubmitLimiter(rdb *redis.Client, limit int, window time.Duration, log zerolog.Logger) *SubmitLimiter {
	return &SubmitLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		now:    time.Now,
		log:    log.With().Str("component", "submit_limiter").Logger(),
	}
}

// Middleware returns a Gin middleware that rate-limits by the student in the
// JWT claims. It must run after RequireStudentJWT.
func (l *SubmitLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}

		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		slot := l.now().UnixNano() / int64(l.window)
		key := config.CacheKey.SubmitRateKey(claims.UserID, slot)

		var incr *redis.IntCmd
		_, err := l.rdb.TxPipelined(c.Request.Context(), func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(c.Request.Context(), key)
			pipe.Expire(c.Request.Context(), key, l.window)
			return nil
		})
		if err != nil {
			// Fail open.
			l.log.Warn().Err(err).Int("student_id", claims.UserID).Msg("Submit rate limit check failed")
			c.Next()
			return
		}

		count := int(incr.Val())
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		if remaining := l.limit - count; remaining > 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		} else {
			c.Header("X-RateLimit-Remaining", "0")
		}

		if count > l.limit {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
