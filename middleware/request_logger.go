package middleware

import (
	"time"

	"github.com/Banyel3/iayos-sub011/pkg/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs each request after it completes. Logging goes through
// the request context, which carries request_id from RequestID and, for
// authenticated routes, account_id and profile_type from the auth
// middleware, so every request line is attributable to an account.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}

		// Auth runs after this middleware, so read the context post-Next.
		log := logger.WithContext(c.Request.Context())

		// Log with appropriate level based on status code
		switch {
		case status >= 500:
			log.Error("request completed", attrs...)
		case status >= 400:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}
