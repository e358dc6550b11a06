package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"guardroster/pkg/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = logger.RequestIDField
	requestIDMaxLen = 64
)

// RequestID 请求追踪 ID 中间件
// 沿用调用方（排班前端或上游编排）传入的 X-Request-ID，缺失或不合法时生成 UUID。
// ID 同时写入 request context，同步 / 回滚 / 每日状态服务的日志据此关联同一次请求
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), rid))

		c.Next()
	}
}

// validRequestID 只接受可安全写入日志的字符
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for _, r := range rid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
