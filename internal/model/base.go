package model

import "time"

// Timestamps 通用审计字段
type Timestamps struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// StrPtr 返回字符串指针，空串返回 nil
func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StrVal 解引用字符串指针，nil 返回空串
func StrVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// SameID 比较两个可空 ID 是否相同（均为 nil 视为相同）
func SameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
