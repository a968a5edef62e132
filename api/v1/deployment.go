package v1

import "time"

// Deployment 相关 API 定义

// DeploymentOptions 部署选项
type DeploymentOptions struct {
	SkipValidation bool `json:"skip_validation"`
	SkipBackup     bool `json:"skip_backup"`
	SkipTests      bool `json:"skip_tests"`
	Force          bool `json:"force"`
}

// CreateDeploymentRequest 发起部署请求
type CreateDeploymentRequest struct {
	ConfigurationID int64             `json:"configuration_id" binding:"required"`
	InstanceID      int64             `json:"instance_id" binding:"required"`
	Options         DeploymentOptions `json:"options"`
}

// CreateDeploymentResponseData 发起部署立即返回的句柄
type CreateDeploymentResponseData struct {
	DeploymentID int64  `json:"deployment_id"`
	DeploymentNo string `json:"deployment_no"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
}

// DeploymentDetail 部署状态详情
type DeploymentDetail struct {
	Id              int64      `json:"id"`
	DeploymentNo    string     `json:"deployment_no"`
	ConfigurationID int64      `json:"configuration_id"`
	InstanceID      int64      `json:"instance_id"`
	BackupID        *int64     `json:"backup_id"`
	Status          string     `json:"status"`
	Progress        int        `json:"progress"`
	CurrentStep     string     `json:"current_step,omitempty"`
	Result          string     `json:"result,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	CanRollback     bool       `json:"can_rollback"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	RolledBackAt    *time.Time `json:"rolled_back_at"`
	DurationMs      int64      `json:"duration_ms"`
}

// ListDeploymentRequest 部署列表查询请求
type ListDeploymentRequest struct {
	Page            int    `form:"page" example:"1"`
	PageSize        int    `form:"page_size" binding:"omitempty,max=100" example:"10"`
	InstanceID      *int64 `form:"instance_id"`
	ConfigurationID *int64 `form:"configuration_id"`
	Status          string `form:"status"`
}

type ListDeploymentResponseData struct {
	Total int64              `json:"total"`
	List  []DeploymentDetail `json:"list"`
}

// ListDeploymentLogsRequest 部署日志查询请求
type ListDeploymentLogsRequest struct {
	Level  string     `form:"level" example:"error"`
	Since  *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit  int        `form:"limit" binding:"omitempty,max=500" example:"100"`
	Offset int        `form:"offset" example:"0"`
}

// DeploymentLogItem 单条部署日志（按时间倒序返回）
type DeploymentLogItem struct {
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	CreateTime time.Time `json:"create_time"`
}

type ListDeploymentLogsResponseData struct {
	Total int64               `json:"total"`
	List  []DeploymentLogItem `json:"list"`
}

// DeploymentMetricsRequest 指标聚合查询请求
type DeploymentMetricsRequest struct {
	InstanceID *int64     `form:"instance_id"`
	ConfigType string     `form:"config_type"`
	StartTime  *time.Time `form:"start_time" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime    *time.Time `form:"end_time" time_format:"2006-01-02T15:04:05Z07:00"`
	RecentN    int        `form:"recent_n" binding:"omitempty,max=50"`
}

// DeploymentMetricsData 指标聚合结果
type DeploymentMetricsData struct {
	Total           int64              `json:"total"`
	SuccessCount    int64              `json:"success_count"`
	FailedCount     int64              `json:"failed_count"`
	RolledBackCount int64              `json:"rolled_back_count"`
	AvgDurationMs   int64              `json:"avg_duration_ms"`
	ByType          map[string]int64   `json:"by_type"`
	ByStatus        map[string]int64   `json:"by_status"`
	Recent          []DeploymentDetail `json:"recent"`
}

// DeploymentResult 部署结果载荷（序列化后存入 deployment.result）
// 任何 failed 条目都必须保留在载荷中，即使整体状态为 success
type DeploymentResult struct {
	Modules       []ModuleStepResult `json:"modules,omitempty"`
	CustomFields  []FieldStepResult  `json:"custom_fields,omitempty"`
	Workflows     []StepResult       `json:"workflows,omitempty"`
	Dashboards    []StepResult       `json:"dashboards,omitempty"`
	ModuleConfigs []StepResult       `json:"module_configs,omitempty"`
	Views         []ViewStepResult   `json:"views,omitempty"`
	TotalSteps    int                `json:"total_steps"`
	FailedSteps   int                `json:"failed_steps"`
}

// 条目级状态常量
const (
	StepStatusInstalled = "installed"
	StepStatusNotFound  = "not_found"
	StepStatusCreated   = "created"
	StepStatusExists    = "exists"
	StepStatusApplied   = "applied"
	StepStatusPending   = "pending" // 显式的 NotImplemented 变体，不伪装成功
	StepStatusFailed    = "failed"
)

type ModuleStepResult struct {
	Name          string `json:"name"`
	TechnicalName string `json:"technical_name"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

type FieldStepResult struct {
	Model     string `json:"model"`
	FieldName string `json:"field_name"`
	Status    string `json:"status"`
	RemoteID  int64  `json:"remote_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type StepResult struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ViewStepResult struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	RemoteID int64  `json:"remote_id,omitempty"`
	Error    string `json:"error,omitempty"`
}
