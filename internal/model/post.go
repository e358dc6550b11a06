package model

// OperationalPost 运营岗位 — 对应 puestos_operativos
type OperationalPost struct {
	ID            string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nombre        string `gorm:"type:varchar(150);not null"                     json:"nombre"`
	InstalacionID string `gorm:"type:uuid;not null"                             json:"instalacion_id"`
	RolID         string `gorm:"type:uuid;not null"                             json:"rol_id"`
	Activo        bool   `gorm:"not null;default:true"                          json:"activo"`
	EsPPC         bool   `gorm:"column:es_ppc;not null;default:false"           json:"es_ppc"` // 岗位空缺待补
	Timestamps

	// 关联（外部数据可能缺失，读取时允许为 nil）
	Instalacion *Installation `gorm:"foreignKey:InstalacionID;references:ID" json:"instalacion,omitempty"`
	Rol         *ServiceRole  `gorm:"foreignKey:RolID;references:ID"         json:"rol,omitempty"`
}

// TableName 指定表名
func (OperationalPost) TableName() string { return "puestos_operativos" }
