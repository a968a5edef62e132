package model

import "time"

// Configuration 可部署的配置/模板工件
type Configuration struct {
	Id        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"column:name;size:255;not null"`
	CompanyID int64  `json:"company_id" gorm:"column:company_id;not null;index"`

	ConfigType string `json:"config_type" gorm:"column:config_type;size:50;not null;index"`

	// 生成的内容：代码类配置为源码文本，kickoff 模板为模板结构 JSON
	Content  string `json:"content" gorm:"column:content;type:text"`
	FilePath string `json:"file_path" gorm:"column:file_path;size:500"`

	// 视图类配置作用的远端模型，如 project.task
	TargetModel string `json:"target_model" gorm:"column:target_model;size:255"`

	Status         string `json:"status" gorm:"column:status;size:50;not null;default:'draft';index"`
	CurrentVersion int    `json:"current_version" gorm:"column:current_version;default:0"`
	ReviewComment  string `json:"review_comment" gorm:"column:review_comment;type:text"`

	Creator    string    `json:"creator" gorm:"column:creator;size:100"`
	Modifier   string    `json:"modifier" gorm:"column:modifier;size:100"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified;autoUpdateTime"`
}

func (Configuration) TableName() string {
	return "configuration"
}

// ConfigurationType 配置类型常量
const (
	ConfigTypeModel           = "model"
	ConfigTypeView            = "view"
	ConfigTypeWorkflow        = "workflow"
	ConfigTypeSecurity        = "security"
	ConfigTypeReport          = "report"
	ConfigTypeKickoffTemplate = "kickoff_template"
)

// ConfigurationStatus 配置生命周期状态常量
const (
	ConfigStatusDraft         = "draft"
	ConfigStatusPendingReview = "pending_review"
	ConfigStatusNeedsChanges  = "needs_changes"
	ConfigStatusApproved      = "approved"
	ConfigStatusRejected      = "rejected"
	ConfigStatusDeployed      = "deployed"
)
