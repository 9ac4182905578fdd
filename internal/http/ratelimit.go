package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// authRateLimiter frena rafagas de intentos de login desde el portal.
// El portal atiende un unico perfil, asi que el limite es global.
type authRateLimiter struct {
	logger  *zap.Logger
	limiter *rate.Limiter
	perSec  rate.Limit
}

func newAuthRateLimiter(logger *zap.Logger, perMinute int) *authRateLimiter {
	if perMinute <= 0 {
		return &authRateLimiter{logger: logger}
	}
	perSec := rate.Limit(float64(perMinute) / 60.0)
	return &authRateLimiter{
		logger:  logger,
		limiter: rate.NewLimiter(perSec, perMinute),
		perSec:  perSec,
	}
}

func (l *authRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limiter == nil || l.limiter.Allow() {
			c.Next()
			return
		}
		retryAfter := int(math.Ceil(1 / float64(l.perSec)))
		if retryAfter < 1 {
			retryAfter = 1
		}
		l.logger.Warn("auth rate limit exceeded", zap.String("path", c.Request.URL.Path))
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "RATE_LIMITED",
			"message": "Too many attempts. Please wait and try again.",
		})
	}
}
