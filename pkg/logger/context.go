package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestIDKey struct{}

// RequestIDField 日志中请求 ID 的字段名
const RequestIDField = "request_id"

// WithRequestID 把请求 ID 放入 context，供下游服务日志关联同一次请求
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID 取出 context 中的请求 ID，没有时返回空串
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// FromContext 返回带 request_id 字段的子日志器；context 中没有请求 ID 时原样返回 base
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := RequestID(ctx); id != "" {
		return base.With(zap.String(RequestIDField, id))
	}
	return base
}
