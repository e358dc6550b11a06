package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrPostLocked 岗位正在被其他排班同步占用
var ErrPostLocked = errors.New("岗位排班正在同步中，请稍后重试")

// ValidationError 输入不合法：未知岗位、非法排班参数等。
// 在任何写入前返回。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("参数校验失败: %s %s", e.Field, e.Reason)
}

// NewValidation 创建 ValidationError
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError 记录不存在
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s 不存在: %s", e.Entity, e.Key)
}

// ConflictError 严格模式下人工编辑过的日期阻止了覆盖
type ConflictError struct {
	PostID string
	Date   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("岗位 %s 在 %s 已被人工编辑，拒绝覆盖", e.PostID, e.Date)
}

// DayFailure 单日写入失败明细
type DayFailure struct {
	Date  string `json:"fecha"`
	Error string `json:"error"`
}

// PartialFailureError 部分日期写入失败
type PartialFailureError struct {
	PostID    string
	Succeeded int
	Failed    []DayFailure
}

func (e *PartialFailureError) Error() string {
	dates := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		dates = append(dates, f.Date)
	}
	return fmt.Sprintf("岗位 %s 有 %d 天写入失败（成功 %d 天）: %s",
		e.PostID, len(e.Failed), e.Succeeded, strings.Join(dates, ","))
}

// InvalidGuardDataError 保安资料不完整（缺名字或父姓）。
// 仅作为解析阶段的内部跳过信号，不向调用方暴露。
type InvalidGuardDataError struct {
	GuardID string
	Reason  string
}

func (e *InvalidGuardDataError) Error() string {
	return fmt.Sprintf("保安 %s 资料无效: %s", e.GuardID, e.Reason)
}

// IsValidation 判断是否为参数校验错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound 判断是否为记录不存在错误
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsConflict 判断是否为人工编辑冲突
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
