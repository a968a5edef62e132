package model

import "time"

// ConfigurationVersion 部署成功时的配置内容不可变快照，按配置单调递增编号
type ConfigurationVersion struct {
	Id              int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ConfigurationID int64  `json:"configuration_id" gorm:"column:configuration_id;not null;uniqueIndex:uk_config_version"`
	VersionNumber   int    `json:"version_number" gorm:"column:version_number;not null;uniqueIndex:uk_config_version"`
	Content         string `json:"content" gorm:"column:content;type:text;not null"`
	ContentHash     string `json:"content_hash" gorm:"column:content_hash;size:64;index"`
	DeploymentID    *int64 `json:"deployment_id" gorm:"column:deployment_id;index"`

	DeployedAt time.Time `json:"deployed_at" gorm:"column:deployed_at;not null"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
}

func (ConfigurationVersion) TableName() string {
	return "configuration_version"
}
