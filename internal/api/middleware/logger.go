package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guardroster/pkg/logger"
)

// AccessLog 请求访问日志
// 记录路由模板而非原始路径；quietPaths 的成功请求记为 Debug。
// 日志器从 request context 派生，与服务层日志共用 request_id
func AccessLog(base *zap.Logger, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("ip", c.ClientIP()),
			zap.Int("body_bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
		}
		if postID := c.GetString(postIDKey); postID != "" {
			fields = append(fields, zap.String("post_id", postID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		log := logger.FromContext(c.Request.Context(), base)
		switch {
		case status >= 500:
			log.Error("请求处理失败", fields...)
		case status >= 400:
			log.Warn("客户端错误", fields...)
		case quiet[c.Request.URL.Path]:
			log.Debug("请求完成", fields...)
		default:
			log.Info("请求完成", fields...)
		}
	}
}
