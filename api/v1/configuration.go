package v1

import "time"

// Configuration 相关 API 定义

// CreateConfigurationRequest 创建配置请求
type CreateConfigurationRequest struct {
	Name       string `json:"name" binding:"required" example:"acme-kickoff"`
	CompanyID  int64  `json:"company_id" binding:"required" example:"1"`
	ConfigType string `json:"config_type" binding:"required" example:"kickoff_template"`
	Content    string `json:"content" example:"{\"modules\":[]}"`
	FilePath   string `json:"file_path" example:"custom_addons/acme/views/sale_view.xml"`
}

// UpdateConfigurationRequest 更新配置请求
type UpdateConfigurationRequest struct {
	Name     *string `json:"name,omitempty"`
	Content  *string `json:"content,omitempty"`
	FilePath *string `json:"file_path,omitempty"`
}

// ReviewConfigurationRequest 评审请求
type ReviewConfigurationRequest struct {
	Decision string `json:"decision" binding:"required" example:"approved"` // approved / needs_changes / rejected
	Comment  string `json:"comment" example:"字段命名需要调整"`
}

// ListConfigurationRequest 列表查询请求
type ListConfigurationRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100" example:"10"`
	CompanyID  *int64 `form:"company_id"`
	ConfigType string `form:"config_type"`
	Status     string `form:"status"`
}

type ListConfigurationResponseData struct {
	Total int64               `json:"total"`
	List  []ConfigurationItem `json:"list"`
}

type ConfigurationItem struct {
	Id             int64     `json:"id"`
	Name           string    `json:"name"`
	CompanyID      int64     `json:"company_id"`
	ConfigType     string    `json:"config_type"`
	FilePath       string    `json:"file_path"`
	Status         string    `json:"status"`
	CurrentVersion int       `json:"current_version"`
	UpdateTime     time.Time `json:"update_time"`
}

type ConfigurationDetail struct {
	ConfigurationItem
	Content       string    `json:"content"`
	ReviewComment string    `json:"review_comment"`
	CreateTime    time.Time `json:"create_time"`
}

// ConfigurationVersionItem 版本快照
type ConfigurationVersionItem struct {
	Id            int64     `json:"id"`
	VersionNumber int       `json:"version_number"`
	ContentHash   string    `json:"content_hash"`
	DeploymentID  *int64    `json:"deployment_id,omitempty"`
	DeployedAt    time.Time `json:"deployed_at"`
	IsCurrent     bool      `json:"is_current"`
}

type ListConfigurationVersionsResponseData struct {
	Total int64                      `json:"total"`
	List  []ConfigurationVersionItem `json:"list"`
}

// RedeployVersionRequest 按历史版本重新部署（配置级回滚）
type RedeployVersionRequest struct {
	InstanceID    int64 `json:"instance_id" binding:"required"`
	VersionNumber *int  `json:"version_number,omitempty"` // 缺省时选择当前版本之前最近的一个
}

// ValidateConfigurationRequest 校验请求
type ValidateConfigurationRequest struct {
	InstanceID int64 `json:"instance_id" binding:"required"`
}

// ValidationFinding 单条校验发现
type ValidationFinding struct {
	Severity string `json:"severity"` // error / warning
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
}

// ValidationResultData 校验结果
type ValidationResultData struct {
	IsValid  bool                `json:"is_valid"`
	Errors   []ValidationFinding `json:"errors"`
	Warnings []ValidationFinding `json:"warnings"`
}
