package middlewares

import (
	"github.com/gin-gonic/gin"

	"fzscan/internal/app/pkg/ginx"
	"fzscan/pkg/logger"
)

// ErrorHandler 统一错误处理中间件：捕获 panic，记录处理器附加的内部错误
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(c.Request.Context(), "[HTTP] panic recovered: %s %s panic=%v",
					c.Request.Method, c.Request.URL.Path, r)
				c.Abort()
				if !c.Writer.Written() {
					ginx.InternalError(c, "系统繁忙，请稍后重试")
				}
			}
		}()

		c.Next()

		for _, e := range c.Errors {
			log.Errorf(c.Request.Context(), "[HTTP] request error: %s %s error=%v",
				c.Request.Method, c.Request.URL.Path, e.Err)
		}
		if len(c.Errors) > 0 && !c.Writer.Written() {
			ginx.InternalError(c, "系统繁忙，请稍后重试")
		}
	}
}
