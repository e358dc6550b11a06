package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"guardroster/internal/api/middleware"
	"guardroster/pkg/response"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义 tag，需在路由注册前调用
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}
	return v.RegisterValidation("fecha", validateFecha)
}

// validateFecha 日期必须是 YYYY-MM-DD 且真实存在
func validateFecha(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// bindFailed 请求体绑定失败：超限返回 413，其余按参数错误处理
func bindFailed(c *gin.Context, err error, code int) {
	if middleware.IsBodyTooLarge(err) {
		middleware.AbortBodyTooLarge(c)
		return
	}
	response.BadRequest(c, code, "参数校验失败")
}
