package dto

// ── 每日状态（pauta diaria）模块 DTO ──

// DailyStatusRequest 每日状态查询参数；fecha 为空时取当天
type DailyStatusRequest struct {
	Fecha         string `form:"fecha"          binding:"omitempty,fecha"`
	PuestoID      string `form:"puesto_id"`
	InstalacionID string `form:"instalacion_id"`
	PaginationRequest
}

// ResolvedDailyStatus 某岗位某日"实际谁在岗"的唯一答案
type ResolvedDailyStatus struct {
	PautaID           int64   `json:"pauta_id"`
	Fecha             string  `json:"fecha"`
	PuestoID          string  `json:"puesto_id"`
	PuestoNombre      *string `json:"puesto_nombre"`
	InstalacionID     *string `json:"instalacion_id"`
	InstalacionNombre *string `json:"instalacion_nombre"`
	RolID             *string `json:"rol_id"`
	RolNombre         *string `json:"rol_nombre"`
	HoraInicio        *string `json:"hora_inicio"`
	HoraTermino       *string `json:"hora_termino"`

	TipoTurno     string  `json:"tipo_turno"`
	EstadoPuesto  string  `json:"estado_puesto"`
	EstadoUI      string  `json:"estado_ui"`
	TipoCobertura string  `json:"tipo_cobertura"`
	Observaciones *string `json:"observaciones"`

	GuardiaTitularID     *string `json:"guardia_titular_id"`
	GuardiaTitularNombre *string `json:"guardia_titular_nombre"`

	GuardiaTrabajoID       *string `json:"guardia_trabajo_id"`
	GuardiaTrabajoNombre   *string `json:"guardia_trabajo_nombre"`
	GuardiaTrabajoTelefono *string `json:"guardia_trabajo_telefono"`
	FuenteGuardia          string  `json:"fuente_guardia"` // cobertura | meta | titular | ninguna

	CoberturaID        *string `json:"cobertura_id"`
	CoberturaGuardiaID *string `json:"cobertura_guardia_id"`

	EditadoManualmente bool `json:"editado_manualmente"`
	EsPPC              bool `json:"es_ppc"`
	EsReemplazo        bool `json:"es_reemplazo"`
	EsSinCobertura     bool `json:"es_sin_cobertura"`
	EsFaltaSinAviso    bool `json:"es_falta_sin_aviso"`
	NecesitaCobertura  bool `json:"necesita_cobertura"`
}
