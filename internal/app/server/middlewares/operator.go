package middlewares

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"fzscan/internal/app/domains/entity/etoperator"
	"fzscan/pkg/logger"
)

const (
	HeaderOperatorID   = "X-Operator-Id"
	HeaderOperatorName = "X-Operator-Name"

	operatorKey = "operator"
)

// Operator 从请求头读取操作人并写入上下文，姓名允许 URL 编码
func Operator() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderOperatorID))
		name := strings.TrimSpace(c.GetHeader(HeaderOperatorName))
		if decoded, err := url.QueryUnescape(name); err == nil {
			name = decoded
		}

		c.Set(operatorKey, etoperator.Operator{ID: id, Name: name})
		if id != "" {
			c.Request = c.Request.WithContext(logger.WithOperatorID(c.Request.Context(), id))
		}
		c.Next()
	}
}

// OperatorFrom 取当前请求的操作人，未设置时返回空值（由业务层校验）
func OperatorFrom(c *gin.Context) etoperator.Operator {
	if v, ok := c.Get(operatorKey); ok {
		if op, ok := v.(etoperator.Operator); ok {
			return op
		}
	}
	return etoperator.Operator{}
}
