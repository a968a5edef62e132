package model

import "time"

// Deployment 一次将配置应用到实例的执行记录
type Deployment struct {
	Id           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	DeploymentNo string `json:"deployment_no" gorm:"column:deployment_no;size:64;uniqueIndex;not null"`

	ConfigurationID int64  `json:"configuration_id" gorm:"column:configuration_id;not null;index"`
	InstanceID      int64  `json:"instance_id" gorm:"column:instance_id;not null;index"`
	ConfigType      string `json:"config_type" gorm:"column:config_type;size:50;index"`
	BackupID        *int64 `json:"backup_id" gorm:"column:backup_id;index"`

	Status      string `json:"status" gorm:"column:status;size:50;not null;default:'pending';index"`
	Progress    int    `json:"progress" gorm:"column:progress;default:0"`
	CurrentStep string `json:"current_step" gorm:"column:current_step;size:255"`

	// 冻结副本：入队时捕获的配置内容，运行期间不再读取 configuration.content
	FrozenContent string `json:"-" gorm:"column:frozen_content;type:text"`

	Result       string `json:"result" gorm:"column:result;type:text"`
	ErrorMessage string `json:"error_message" gorm:"column:error_message;type:text"`
	ErrorStack   string `json:"error_stack" gorm:"column:error_stack;type:text"`

	CanRollback  int8       `json:"can_rollback" gorm:"column:can_rollback;default:0"`
	StartedAt    *time.Time `json:"started_at" gorm:"column:started_at"`
	CompletedAt  *time.Time `json:"completed_at" gorm:"column:completed_at"`
	RolledBackAt *time.Time `json:"rolled_back_at" gorm:"column:rolled_back_at"`
	DurationMs   int64      `json:"duration_ms" gorm:"column:duration_ms;default:0"`

	Creator    string    `json:"creator" gorm:"column:creator;size:100"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified;autoUpdateTime"`
}

func (Deployment) TableName() string {
	return "deployment"
}

// DeploymentStatus 部署状态常量
// success/failed/rolled_back 为终态；success 之后仅允许转移到 rolled_back
const (
	DeploymentStatusPending    = "pending"
	DeploymentStatusInProgress = "in_progress"
	DeploymentStatusSuccess    = "success"
	DeploymentStatusFailed     = "failed"
	DeploymentStatusRolledBack = "rolled_back"
)

// IsTerminalDeploymentStatus 是否为终态
func IsTerminalDeploymentStatus(status string) bool {
	switch status {
	case DeploymentStatusSuccess, DeploymentStatusFailed, DeploymentStatusRolledBack:
		return true
	}
	return false
}
