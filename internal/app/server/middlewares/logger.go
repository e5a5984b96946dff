package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fzscan/pkg/logger"
)

// HeaderRequestID 请求追踪头
const HeaderRequestID = "X-Request-Id"

// Logger 请求日志中间件，注入 trace_id 并在响应后记录耗时
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(HeaderRequestID)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header(HeaderRequestID, traceID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			log.Errorf(ctx, "[HTTP] %s %s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, latency)
		case status >= 400:
			log.Warnf(ctx, "[HTTP] %s %s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			log.Infof(ctx, "[HTTP] %s %s status=%d latency=%s", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}
