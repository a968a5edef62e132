package v1

import "time"

// Notification 相关 API 定义

// 可用渠道与触发器
const (
	ChannelInApp   = "in_app"
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"

	TriggerOnStatusChange = "on_status_change"
	TriggerOnError        = "on_error"
	TriggerOnCompletion   = "on_completion"
)

// CreateSubscriptionRequest 订阅部署通知请求
type CreateSubscriptionRequest struct {
	Channels   []string `json:"channels" binding:"required,min=1"`
	Triggers   []string `json:"triggers" binding:"required,min=1"`
	WebhookUrl string   `json:"webhook_url,omitempty"`
}

type CreateSubscriptionResponseData struct {
	SubscriptionID int64 `json:"subscription_id"`
}

// ListNotificationRequest 站内通知列表查询
type ListNotificationRequest struct {
	Page     int   `form:"page" example:"1"`
	PageSize int   `form:"page_size" binding:"omitempty,max=100" example:"10"`
	Unread   *bool `form:"unread"`
}

type ListNotificationResponseData struct {
	Total int64              `json:"total"`
	List  []NotificationItem `json:"list"`
}

type NotificationItem struct {
	Id           int64     `json:"id"`
	DeploymentID int64     `json:"deployment_id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	IsRead       int8      `json:"is_read"`
	CreateTime   time.Time `json:"create_time"`
}
