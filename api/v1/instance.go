package v1

import "time"

// OdooInstance 相关 API 定义

// CreateInstanceRequest 注册实例请求
type CreateInstanceRequest struct {
	InstanceName string `json:"instance_name" binding:"required" example:"acme-prod"`
	CompanyID    int64  `json:"company_id" binding:"required" example:"1"`
	ApiUrl       string `json:"api_url" binding:"required" example:"https://acme.odoo.example.com"`
	Database     string `json:"database" binding:"required" example:"acme"`
	Username     string `json:"username" binding:"required" example:"admin@acme.com"`
	ApiKey       string `json:"api_key" binding:"required" example:"your-api-key"`
	MasterPwd    string `json:"master_pwd" example:"database-manager-password"`
	OdooVersion  string `json:"odoo_version" example:"17.0"`
	Env          string `json:"env" example:"prod"`
	Describes    string `json:"describes" example:"实例描述"`
	IsEnabled    int8   `json:"is_enabled" example:"1"`
}

// UpdateInstanceRequest 更新实例请求
type UpdateInstanceRequest struct {
	InstanceName *string `json:"instance_name,omitempty"`
	ApiUrl       *string `json:"api_url,omitempty"`
	Database     *string `json:"database,omitempty"`
	Username     *string `json:"username,omitempty"`
	ApiKey       *string `json:"api_key,omitempty"`
	MasterPwd    *string `json:"master_pwd,omitempty"`
	OdooVersion  *string `json:"odoo_version,omitempty"`
	Env          *string `json:"env,omitempty"`
	Describes    *string `json:"describes,omitempty"`
	IsEnabled    *int8   `json:"is_enabled,omitempty"`
}

// ListInstanceRequest 列表查询请求
type ListInstanceRequest struct {
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" binding:"omitempty,max=100" example:"10"`
	CompanyID *int64 `form:"company_id"`
	Env       string `form:"env" example:"prod"`
	Status    string `form:"status" example:"online"`
}

type ListInstanceResponseData struct {
	Total int64          `json:"total"`
	List  []InstanceItem `json:"list"`
}

type InstanceItem struct {
	Id              int64      `json:"id"`
	InstanceName    string     `json:"instance_name"`
	CompanyID       int64      `json:"company_id"`
	ApiUrl          string     `json:"api_url"`
	Database        string     `json:"database"`
	OdooVersion     string     `json:"odoo_version"`
	Env             string     `json:"env"`
	Status          string     `json:"status"`
	LastHealthCheck *time.Time `json:"last_health_check"`
	IsEnabled       int8       `json:"is_enabled"`
}

type InstanceDetail struct {
	InstanceItem
	Username   string    `json:"username"`
	Describes  string    `json:"describes"`
	CreateTime time.Time `json:"create_time"`
	UpdateTime time.Time `json:"update_time"`
}

// InstanceHealthData 健康检查结果
type InstanceHealthData struct {
	InstanceID    int64  `json:"instance_id"`
	Status        string `json:"status"`
	ServerVersion string `json:"server_version,omitempty"`
	Error         string `json:"error,omitempty"`
}
