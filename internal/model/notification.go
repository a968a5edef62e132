package model

import "time"

// NotificationSubscription 部署通知订阅
type NotificationSubscription struct {
	Id           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	DeploymentID int64  `json:"deployment_id" gorm:"column:deployment_id;not null;index"`
	UserID       string `json:"user_id" gorm:"column:user_id;size:64;not null;index"`

	// JSON 数组，例如 ["in_app","webhook"] / ["on_status_change"]
	Channels string `json:"channels" gorm:"column:channels;size:255;not null"`
	Triggers string `json:"triggers" gorm:"column:triggers;size:255;not null"`

	WebhookUrl string `json:"webhook_url" gorm:"column:webhook_url;size:500"`

	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
}

func (NotificationSubscription) TableName() string {
	return "notification_subscription"
}

// Notification 站内通知
type Notification struct {
	Id           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserID       string `json:"user_id" gorm:"column:user_id;size:64;not null;index"`
	DeploymentID int64  `json:"deployment_id" gorm:"column:deployment_id;index"`
	Title        string `json:"title" gorm:"column:title;size:255;not null"`
	Message      string `json:"message" gorm:"column:message;type:text"`
	IsRead       int8   `json:"is_read" gorm:"column:is_read;default:0;index"`

	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notification"
}
