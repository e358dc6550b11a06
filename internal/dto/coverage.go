package dto

// ── 顶班（turnos extras）模块 DTO ──

// CoverageRequest 登记顶班请求
type CoverageRequest struct {
	PuestoID  string `json:"puesto_id"  binding:"required"`
	GuardiaID string `json:"guardia_id" binding:"required"`
	Fecha     string `json:"fecha"      binding:"required,fecha"`
	Estado    string `json:"estado"     binding:"omitempty,oneof=pendiente confirmado pagado anulado"`
}

// CoverageResponse 顶班记录响应
type CoverageResponse struct {
	ID        string `json:"id"`
	PuestoID  string `json:"puesto_id"`
	GuardiaID string `json:"guardia_id"`
	Fecha     string `json:"fecha"`
	Estado    string `json:"estado"`
	CreatedAt string `json:"created_at"`
}
