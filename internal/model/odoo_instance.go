package model

import "time"

// OdooInstance 目标 Odoo 实例（通过 JSON-RPC 访问）
type OdooInstance struct {
	Id           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	InstanceName string `json:"instance_name" gorm:"column:instance_name;size:100;not null"`
	CompanyID    int64  `json:"company_id" gorm:"column:company_id;not null;index"`

	ApiUrl   string `json:"api_url" gorm:"column:api_url;size:255;not null"`
	Database string `json:"database" gorm:"column:database;size:100;not null"`
	Username string `json:"username" gorm:"column:username;size:255;not null"`

	// 凭据只保存 vault 加密后的密文
	CredentialCipher string `json:"-" gorm:"column:credential_cipher;type:text;not null"`
	MasterPwdCipher  string `json:"-" gorm:"column:master_pwd_cipher;type:text"`

	OdooVersion string `json:"odoo_version" gorm:"column:odoo_version;size:50"`
	Env         string `json:"env" gorm:"column:env;size:50"`

	Status          string     `json:"status" gorm:"column:status;size:50;not null;default:'unknown';index"`
	LastHealthCheck *time.Time `json:"last_health_check" gorm:"column:last_health_check"`

	IsEnabled int8   `json:"is_enabled" gorm:"column:is_enabled;default:1"`
	Describes string `json:"describes" gorm:"column:describes;size:500"`

	Creator    string    `json:"creator" gorm:"column:creator;size:100"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified;autoUpdateTime"`
}

func (OdooInstance) TableName() string {
	return "odoo_instance"
}

// OdooInstanceStatus 实例健康状态常量
const (
	InstanceStatusOnline  = "online"
	InstanceStatusOffline = "offline"
	InstanceStatusUnknown = "unknown"
)
