package model

// ServiceRole 勤务角色 — 对应 roles_servicio
// 定义循环班型：连续 DiasTrabajo 天上班 + DiasDescanso 天休息
type ServiceRole struct {
	ID           string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nombre       string `gorm:"type:varchar(100);not null"                     json:"nombre"`
	DiasTrabajo  int    `gorm:"type:smallint;not null"                         json:"dias_trabajo"`
	DiasDescanso int    `gorm:"type:smallint;not null"                         json:"dias_descanso"`
	HoraInicio   string `gorm:"type:time;not null"                             json:"hora_inicio"`
	HoraTermino  string `gorm:"type:time;not null"                             json:"hora_termino"`
	Timestamps
}

// TableName 指定表名
func (ServiceRole) TableName() string { return "roles_servicio" }
