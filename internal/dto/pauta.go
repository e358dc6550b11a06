package dto

import pkgerrors "guardroster/pkg/errors"

// ── 月度排班（pauta mensual）模块 DTO ──

// SyncRequest 指派 / 取消指派后的排班同步请求
// guardia_id 为 null 表示取消指派
type SyncRequest struct {
	PuestoID      string  `json:"puesto_id"      binding:"required"`
	GuardiaID     *string `json:"guardia_id"`
	InstalacionID string  `json:"instalacion_id"`
	RolID         string  `json:"rol_id"`
	FechaEfectiva *string `json:"fecha_efectiva" binding:"omitempty,fecha"`
	Strict        *bool   `json:"strict"` // 未传时使用配置 schedule.strict_manual_edits
}

// RollbackRequest 单日回滚请求
// existia=false 表示同步前该日没有记录，回滚时删除该行；未传时按已存在处理，绝不删除。
// 已存在且 guardia_anterior_id 为 null 时，按 estado_puesto_anterior 恢复为空缺（ppc，默认）或休息日（libre）
type RollbackRequest struct {
	PuestoID             string  `json:"puesto_id"              binding:"required"`
	GuardiaAnteriorID    *string `json:"guardia_anterior_id"`
	Existia              *bool   `json:"existia"`
	EstadoPuestoAnterior string  `json:"estado_puesto_anterior" binding:"omitempty,oneof=asignado ppc libre"`
	Fecha                string  `json:"fecha"                  binding:"required,fecha"`
}

// RowExisted 同步前该日是否已有记录
func (r *RollbackRequest) RowExisted() bool {
	return r.Existia == nil || *r.Existia
}

// MarkDayRequest 人工标记某日执行情况
type MarkDayRequest struct {
	PuestoID         string  `json:"puesto_id"          binding:"required"`
	Fecha            string  `json:"fecha"              binding:"required,fecha"`
	EstadoGuardia    string  `json:"estado_guardia"     binding:"required,max=30"`
	Observaciones    *string `json:"observaciones"      binding:"omitempty,max=1000"`
	GuardiaTrabajoID *string `json:"guardia_trabajo_id"`
	TipoCobertura    *string `json:"tipo_cobertura"     binding:"omitempty,oneof=guardia_asignado ppc sin_cobertura"`
}

// MonthlyPlanRequest 月度排班查询参数
type MonthlyPlanRequest struct {
	PuestoID string `form:"puesto_id" binding:"required"`
	Anio     int    `form:"anio"      binding:"required,min=2000,max=2100"`
	Mes      int    `form:"mes"       binding:"required,min=1,max=12"`
}

// ── 响应 ──

// SyncResult 同步结果；部分失败时 success=false 并列出失败日期
type SyncResult struct {
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	PuestoID      string                 `json:"puesto_id"`
	Modo          string                 `json:"modo"` // asignar | desasignar
	Desde         string                 `json:"desde"`
	Hasta         string                 `json:"hasta"`
	DaysWritten   int                    `json:"days_written"`
	DaysPreserved int                    `json:"days_preserved"`
	DaysSkipped   int                    `json:"days_skipped"`
	Failed        []pkgerrors.DayFailure `json:"failed,omitempty"`
	Conflicts     []string               `json:"conflicts,omitempty"`
	Canceled      bool                   `json:"canceled"`
}

// RollbackResult 回滚结果
type RollbackResult struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	PuestoID string `json:"puesto_id"`
	Fecha    string `json:"fecha"`
	Accion   string `json:"accion"` // noop | deleted | restored | guard_refreshed
}

// PostDayResponse 月度排班单日
type PostDayResponse struct {
	ID                 int64   `json:"id"`
	PuestoID           string  `json:"puesto_id"`
	Fecha              string  `json:"fecha"`
	GuardiaID          *string `json:"guardia_id"`
	TipoTurno          string  `json:"tipo_turno"`
	EstadoPuesto       string  `json:"estado_puesto"`
	EstadoGuardia      *string `json:"estado_guardia"`
	TipoCobertura      string  `json:"tipo_cobertura"`
	GuardiaTrabajoID   *string `json:"guardia_trabajo_id"`
	Observaciones      *string `json:"observaciones"`
	EditadoManualmente bool    `json:"editado_manualmente"`
	UpdatedAt          string  `json:"updated_at"`
}

// MonthlyPlanResponse 月度排班
type MonthlyPlanResponse struct {
	PuestoID string            `json:"puesto_id"`
	Anio     int               `json:"anio"`
	Mes      int               `json:"mes"`
	Dias     []PostDayResponse `json:"dias"`
}
