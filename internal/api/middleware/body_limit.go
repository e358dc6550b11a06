package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"guardroster/pkg/response"
)

// CodeBodyTooLarge 请求体超限的业务码
const CodeBodyTooLarge = 10005

// BodyLimit 请求体大小限制中间件
// 排班接口只收单岗位的小 JSON，声明长度超限时直接 413；
// 未声明长度的请求在读取时截断，由 handler 通过 IsBodyTooLarge 识别
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			AbortBodyTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge 判断绑定 / 读取错误是否由请求体超限引起
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// AbortBodyTooLarge 以 413 结束请求
func AbortBodyTooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "请求体过大")
	c.Abort()
}
