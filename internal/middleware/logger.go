package middleware

import (
	"time"

	"foodgram/internal/logging"

	"github.com/gin-gonic/gin"
)

// RequestLogger 每个请求记录一行结构化日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logging.Info()
		if status >= 500 {
			event = logging.Error()
		}
		if user := CurrentUser(c); user != nil {
			event = event.Uint("user", user.ID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
