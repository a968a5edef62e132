package model

import "time"

// Backup 实例的时间点备份引用
type Backup struct {
	Id         int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	BackupNo   string `json:"backup_no" gorm:"column:backup_no;size:64;uniqueIndex;not null"`
	InstanceID int64  `json:"instance_id" gorm:"column:instance_id;not null;index"`

	BackupType string `json:"backup_type" gorm:"column:backup_type;size:50;not null;default:'manual'"`
	Status     string `json:"status" gorm:"column:status;size:50;not null;default:'creating';index"`

	FilePath  string `json:"file_path" gorm:"column:file_path;size:500"`
	SizeBytes int64  `json:"size_bytes" gorm:"column:size_bytes;default:0"`

	ErrorMessage string `json:"error_message" gorm:"column:error_message;type:text"`

	Creator    string    `json:"creator" gorm:"column:creator;size:100"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified;autoUpdateTime"`
}

func (Backup) TableName() string {
	return "backup"
}

// BackupType 备份类型常量
const (
	BackupTypeManual        = "manual"
	BackupTypeAutomatic     = "automatic"
	BackupTypePreDeployment = "pre_deployment"
)

// BackupStatus 备份状态常量
const (
	BackupStatusCreating  = "creating"
	BackupStatusCompleted = "completed"
	BackupStatusFailed    = "failed"
)
