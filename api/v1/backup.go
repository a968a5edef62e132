package v1

import "time"

// Backup 相关 API 定义

// CreateBackupRequest 手动创建备份请求
type CreateBackupRequest struct {
	InstanceID int64  `json:"instance_id" binding:"required"`
	BackupType string `json:"backup_type" example:"manual"` // manual / automatic / pre_deployment
}

// ListBackupRequest 备份列表查询请求
type ListBackupRequest struct {
	Page       int    `form:"page" example:"1"`
	PageSize   int    `form:"page_size" binding:"omitempty,max=100" example:"10"`
	InstanceID *int64 `form:"instance_id"`
	Status     string `form:"status"`
}

type ListBackupResponseData struct {
	Total int64        `json:"total"`
	List  []BackupItem `json:"list"`
}

type BackupItem struct {
	Id           int64     `json:"id"`
	BackupNo     string    `json:"backup_no"`
	InstanceID   int64     `json:"instance_id"`
	BackupType   string    `json:"backup_type"`
	Status       string    `json:"status"`
	SizeBytes    int64     `json:"size_bytes"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreateTime   time.Time `json:"create_time"`
}

// RestoreBackupRequest 恢复备份请求
type RestoreBackupRequest struct {
	BackupID int64 `json:"backup_id" binding:"required"`
}
