package repository

import (
	"context"

	"odoosphere/internal/model"
)

type NotificationRepository interface {
	CreateSubscription(ctx context.Context, sub *model.NotificationSubscription) error
	ListSubscriptionsByDeploymentID(ctx context.Context, deploymentID int64) ([]*model.NotificationSubscription, error)
	CreateNotification(ctx context.Context, notification *model.Notification) error
	ListNotifications(ctx context.Context, userID string, page, pageSize int, unread *bool) ([]*model.Notification, int64, error)
	MarkRead(ctx context.Context, userID string, id int64) error
}

func NewNotificationRepository(
	repository *Repository,
) NotificationRepository {
	return &notificationRepository{
		Repository: repository,
	}
}

type notificationRepository struct {
	*Repository
}

func (r *notificationRepository) CreateSubscription(ctx context.Context, sub *model.NotificationSubscription) error {
	return r.DB(ctx).Create(sub).Error
}

func (r *notificationRepository) ListSubscriptionsByDeploymentID(ctx context.Context, deploymentID int64) ([]*model.NotificationSubscription, error) {
	var subs []*model.NotificationSubscription
	err := r.DB(ctx).Where("deployment_id = ?", deploymentID).Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *notificationRepository) CreateNotification(ctx context.Context, notification *model.Notification) error {
	return r.DB(ctx).Create(notification).Error
}

func (r *notificationRepository) ListNotifications(ctx context.Context, userID string, page, pageSize int, unread *bool) ([]*model.Notification, int64, error) {
	var notifications []*model.Notification
	var total int64

	query := r.DB(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if unread != nil && *unread {
		query = query.Where("is_read = 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("gmt_create DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID string, id int64) error {
	return r.DB(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", 1).Error
}
