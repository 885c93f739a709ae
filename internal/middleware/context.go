package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	ctxutil "github.com/streamhub/accounts/pkg/context"
	"github.com/streamhub/accounts/pkg/logger"
)

// ContextMiddleware seeds every request context with tracking metadata and
// logs the request lifecycle through the context-aware logger.
func ContextMiddleware(module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		function := c.Request.URL.Path
		ctx := ctxutil.NewContext(c.Request.Context(), c.Request, module, function)

		ctx, cancel := ctxutil.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", ctxutil.GetRequestID(ctx))

		logger.InfoWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}
