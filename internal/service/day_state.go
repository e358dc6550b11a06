package service

import (
	"strings"

	"guardroster/internal/model"
)

// ── 单日写入字段 ──

// workDayFields 上班日：保安既是计划保安也是实际上岗保安，执行状态待定
func workDayFields(guardID string) model.PostDayFields {
	return model.PostDayFields{
		GuardiaID:        model.StrPtr(guardID),
		TipoTurno:        model.TipoTurnoPlanificado,
		EstadoPuesto:     model.EstadoPuestoAsignado,
		EstadoGuardia:    nil,
		TipoCobertura:    model.TipoCoberturaGuardiaAsignado,
		GuardiaTrabajoID: model.StrPtr(guardID),
	}
}

// restDayFields 休息日
func restDayFields() model.PostDayFields {
	return model.PostDayFields{
		TipoTurno:     model.TipoTurnoLibre,
		EstadoPuesto:  model.EstadoPuestoLibre,
		TipoCobertura: model.TipoCoberturaSinCobertura,
	}
}

// vacantDayFields 岗位空缺（PPC）：仍需有人上岗，与休息日不同
func vacantDayFields() model.PostDayFields {
	return model.PostDayFields{
		TipoTurno:     model.TipoTurnoPlanificado,
		EstadoPuesto:  model.EstadoPuestoPPC,
		TipoCobertura: model.TipoCoberturaPPC,
	}
}

// isWorkDayFor 该行是否已经是 guardID 的标准上班日状态
func isWorkDayFor(rec *model.PostDayRecord, guardID string) bool {
	return matchesFields(rec, workDayFields(guardID))
}

// matchesFields 该行的计划与执行字段是否与 f 完全一致
func matchesFields(rec *model.PostDayRecord, f model.PostDayFields) bool {
	return model.SameID(rec.GuardiaID, f.GuardiaID) &&
		model.SameID(rec.GuardiaTrabajoID, f.GuardiaTrabajoID) &&
		rec.TipoTurno == f.TipoTurno &&
		rec.EstadoPuesto == f.EstadoPuesto &&
		rec.TipoCobertura == f.TipoCobertura &&
		rec.EstadoGuardia == nil && f.EstadoGuardia == nil
}

// ── 执行状态归一化 ──

var estadoSynonyms = map[string]string{
	"":              model.EstadoUIPlanificado,
	"plan":          model.EstadoUIPlanificado,
	"planificado":   model.EstadoUIPlanificado,
	"asistio":       model.EstadoUIAsistido,
	"asistido":      model.EstadoUIAsistido,
	"inasistencia":  model.EstadoUIInasistencia,
	"reemplazo":     model.EstadoUIReemplazo,
	"sin_cobertura": model.EstadoUISinCobertura,
	"extra":         model.EstadoUIExtra,
	"turno_extra":   model.EstadoUIExtra,
	"te":            model.EstadoUIExtra,
}

// canonicalEstado 识别历史同义词；未知取值返回 false
func canonicalEstado(raw string) (string, bool) {
	v, ok := estadoSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return v, ok
}

// NormalizeEstadoUI 将 estado_guardia 的各种历史写法收敛为固定词表，未知取值按 planificado 处理
func NormalizeEstadoUI(raw *string) string {
	if v, ok := canonicalEstado(model.StrVal(raw)); ok {
		return v
	}
	return model.EstadoUIPlanificado
}
