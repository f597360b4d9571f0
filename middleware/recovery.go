package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Banyel3/iayos-sub011/pkg/apperr"
	"github.com/Banyel3/iayos-sub011/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Recovery recovers from handler panics. The log line goes through the
// request context so it carries request_id and, past auth, account_id; the
// response body uses the gateway's error/category shape and never includes
// the panic value.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"category":   apperr.CategoryGeneric,
					"request_id": GetRequestID(c),
				})
			}
		}()

		c.Next()
	}
}
