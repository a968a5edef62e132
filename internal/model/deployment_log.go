package model

import "time"

// DeploymentLog 部署日志，只追加，创建后不再修改
type DeploymentLog struct {
	Id           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	DeploymentID int64  `json:"deployment_id" gorm:"column:deployment_id;not null;index"`
	Level        string `json:"level" gorm:"column:level;size:20;not null;index"`
	Message      string `json:"message" gorm:"column:message;type:text;not null"`
	Detail       string `json:"detail" gorm:"column:detail;type:text"`

	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime;index"`
}

func (DeploymentLog) TableName() string {
	return "deployment_log"
}

// DeploymentLogLevel 日志级别常量
const (
	LogLevelDebug   = "debug"
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)
