package model

import "time"

// 顶班记录状态
const (
	CoverageEstadoPendiente  = "pendiente"
	CoverageEstadoConfirmado = "confirmado"
	CoverageEstadoPagado     = "pagado"
	CoverageEstadoAnulado    = "anulado"
)

// CoverageRecord 顶班 / 加班记录 — 对应 turnos_extras
// 同一岗位同一天可有多条，按 created_at 取最新一条
type CoverageRecord struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PuestoID  string    `gorm:"type:uuid;not null"                             json:"puesto_id"`
	GuardiaID string    `gorm:"type:uuid;not null"                             json:"guardia_id"`
	Fecha     time.Time `gorm:"type:date;not null"                             json:"fecha"`
	Estado    string    `gorm:"type:varchar(20);not null;default:'pendiente'"  json:"estado"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (CoverageRecord) TableName() string { return "turnos_extras" }
