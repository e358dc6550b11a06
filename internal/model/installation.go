package model

// Installation 客户装置 — 对应 instalaciones（外部配置，只读）
type Installation struct {
	ID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Nombre string `gorm:"type:varchar(150);not null"                     json:"nombre"`
	Activo bool   `gorm:"not null;default:true"                          json:"activo"`
	Timestamps
}

// TableName 指定表名
func (Installation) TableName() string { return "instalaciones" }
