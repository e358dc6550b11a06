package model

import (
	"strings"

	pkgerrors "guardroster/pkg/errors"
)

// Guard 保安 — 对应 guardias
type Guard struct {
	ID              string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nombre          *string `gorm:"type:varchar(100)"                              json:"nombre"`
	ApellidoPaterno *string `gorm:"type:varchar(100)"                              json:"apellido_paterno"`
	ApellidoMaterno *string `gorm:"type:varchar(100)"                              json:"apellido_materno,omitempty"`
	Telefono        *string `gorm:"type:varchar(30)"                               json:"telefono,omitempty"`
	Activo          bool    `gorm:"not null;default:true"                          json:"activo"`
	Timestamps
}

// TableName 指定表名
func (Guard) TableName() string { return "guardias" }

// Validate 名字与父姓去空白后均非空才算有效保安
func (g *Guard) Validate() error {
	if g == nil || strings.TrimSpace(g.ID) == "" {
		return &pkgerrors.InvalidGuardDataError{Reason: "缺少 ID"}
	}
	if strings.TrimSpace(StrVal(g.Nombre)) == "" {
		return &pkgerrors.InvalidGuardDataError{GuardID: g.ID, Reason: "缺少名字"}
	}
	if strings.TrimSpace(StrVal(g.ApellidoPaterno)) == "" {
		return &pkgerrors.InvalidGuardDataError{GuardID: g.ID, Reason: "缺少父姓"}
	}
	return nil
}

// FullName 返回 "父姓 母姓, 名字"；资料无效时返回 nil，绝不返回 ", " 之类的残缺串
func (g *Guard) FullName() *string {
	if g.Validate() != nil {
		return nil
	}
	surname := strings.TrimSpace(StrVal(g.ApellidoPaterno))
	if materno := strings.TrimSpace(StrVal(g.ApellidoMaterno)); materno != "" {
		surname += " " + materno
	}
	name := surname + ", " + strings.TrimSpace(StrVal(g.Nombre))
	return &name
}

// Phone 返回去空白后的电话；保安无效或电话为空返回 nil
func (g *Guard) Phone() *string {
	if g.Validate() != nil {
		return nil
	}
	return StrPtr(strings.TrimSpace(StrVal(g.Telefono)))
}
