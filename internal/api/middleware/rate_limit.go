package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"guardroster/pkg/logger"
	"guardroster/pkg/redis"
	"guardroster/pkg/response"
)

// CodeRateLimited 限流业务码
const CodeRateLimited = 10004

// postIDKey 限流时解析出的岗位 ID，访问日志会带上
const postIDKey = "puesto_id"

// KeyFunc 计算限流维度；返回空串表示本次不计数
type KeyFunc func(c *gin.Context) string

// ByClient 按客户端 IP + 路由限流
func ByClient(c *gin.Context) string {
	return fmt.Sprintf("rate_limit:ip:%s:%s", c.ClientIP(), c.FullPath())
}

// ByPost 按请求体中的 puesto_id + 路由限流，读不到 puesto_id 时退回 ByClient
func ByPost(c *gin.Context) string {
	postID := peekPostID(c)
	if c.IsAborted() {
		return ""
	}
	if postID == "" {
		return ByClient(c)
	}
	c.Set(postIDKey, postID)
	return fmt.Sprintf("rate_limit:puesto:%s:%s", postID, c.FullPath())
}

// peekPostID 读取 JSON 请求体里的 puesto_id，并把请求体放回去供 handler 绑定
func peekPostID(c *gin.Context) string {
	if c.Request.Body == nil {
		return strings.TrimSpace(c.Query(postIDKey))
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		if IsBodyTooLarge(err) {
			AbortBodyTooLarge(c)
		}
		return ""
	}

	var body struct {
		PuestoID string `json:"puesto_id"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.PuestoID)
}

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit <= 0 或 rdb 为 nil 时放行（未启用 Redis 的单实例部署）；Redis 出错时同样降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, key KeyFunc, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		k := key(c)
		if c.IsAborted() {
			return
		}
		if k == "" {
			c.Next()
			return
		}

		allowed, err := rdb.CheckRateLimit(c.Request.Context(), k, limit, window)
		if err != nil {
			logger.FromContext(c.Request.Context(), log).Warn("限流检查失败，降级放行", zap.String("key", k), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, CodeRateLimited, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
