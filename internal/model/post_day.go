package model

import (
	"time"

	"gorm.io/datatypes"
)

// tipo_turno：该日在班型中是上班日还是休息日
const (
	TipoTurnoPlanificado = "planificado"
	TipoTurnoLibre       = "libre"
)

// estado_puesto：岗位层面的状态
const (
	EstadoPuestoAsignado = "asignado"
	EstadoPuestoPPC      = "ppc"
	EstadoPuestoLibre    = "libre"
	EstadoPuestoCerrado  = "cerrado"
	EstadoPuestoInactivo = "inactivo"
)

// estado：记录自身生命周期，planificado 为唯一有效值
const (
	EstadoRegistroPlanificado = "planificado"
	EstadoRegistroAnulado     = "anulado"
)

// estado_guardia / estado_ui 的规范取值
const (
	EstadoUIPlanificado  = "planificado"
	EstadoUIAsistido     = "asistido"
	EstadoUIInasistencia = "inasistencia"
	EstadoUIReemplazo    = "reemplazo"
	EstadoUISinCobertura = "sin_cobertura"
	EstadoUIExtra        = "extra"
)

// tipo_cobertura：该日岗位的补位方式
const (
	TipoCoberturaGuardiaAsignado = "guardia_asignado"
	TipoCoberturaPPC             = "ppc"
	TipoCoberturaSinCobertura    = "sin_cobertura"
)

// MetaCoberturaGuardiaID 旧版本写在 meta 中的顶班保安字段
const MetaCoberturaGuardiaID = "cobertura_guardia_id"

// PostDayRecord 月度排班行 — 对应 pauta_mensual
// 唯一键 (puesto_id, anio, mes, dia)
type PostDayRecord struct {
	ID                 int64             `gorm:"primaryKey;autoIncrement"                                   json:"id"`
	PuestoID           string            `gorm:"type:uuid;not null;uniqueIndex:uq_pauta_mensual_puesto_dia" json:"puesto_id"`
	GuardiaID          *string           `gorm:"type:uuid"                                                  json:"guardia_id"`
	Anio               int               `gorm:"type:smallint;not null;uniqueIndex:uq_pauta_mensual_puesto_dia" json:"anio"`
	Mes                int               `gorm:"type:smallint;not null;uniqueIndex:uq_pauta_mensual_puesto_dia" json:"mes"`
	Dia                int               `gorm:"type:smallint;not null;uniqueIndex:uq_pauta_mensual_puesto_dia" json:"dia"`
	TipoTurno          string            `gorm:"type:varchar(20);not null"                                  json:"tipo_turno"`
	EstadoPuesto       string            `gorm:"type:varchar(20);not null"                                  json:"estado_puesto"`
	Estado             string            `gorm:"type:varchar(20);not null;default:'planificado'"            json:"estado"`
	EstadoGuardia      *string           `gorm:"type:varchar(30)"                                           json:"estado_guardia"`
	TipoCobertura      string            `gorm:"type:varchar(30);not null"                                  json:"tipo_cobertura"`
	GuardiaTrabajoID   *string           `gorm:"type:uuid"                                                  json:"guardia_trabajo_id"`
	Observaciones      *string           `gorm:"type:text"                                                  json:"observaciones"`
	Meta               datatypes.JSONMap `gorm:"type:jsonb"                                                 json:"meta,omitempty"`
	EditadoManualmente bool              `gorm:"not null;default:false"                                     json:"editado_manualmente"`
	Timestamps
}

// TableName 指定表名
func (PostDayRecord) TableName() string { return "pauta_mensual" }

// Date 返回该行对应的日历日（UTC 零点）
func (r *PostDayRecord) Date() time.Time {
	return time.Date(r.Anio, time.Month(r.Mes), r.Dia, 0, 0, 0, 0, time.UTC)
}

// MetaCoverageGuardID 读取 meta.cobertura_guardia_id（兼容旧数据）
func (r *PostDayRecord) MetaCoverageGuardID() *string {
	if r.Meta == nil {
		return nil
	}
	switch v := r.Meta[MetaCoberturaGuardiaID].(type) {
	case string:
		return StrPtr(v)
	default:
		return nil
	}
}

// PostDayFields 同步 / 回滚写入的字段集合
type PostDayFields struct {
	GuardiaID        *string
	TipoTurno        string
	EstadoPuesto     string
	EstadoGuardia    *string
	TipoCobertura    string
	GuardiaTrabajoID *string
}
