package repository

import (
	"context"
	"time"

	"odoosphere/internal/model"
)

// DeploymentLogFilter 日志查询过滤条件
type DeploymentLogFilter struct {
	Level  string
	Since  *time.Time
	Limit  int
	Offset int
}

type DeploymentLogRepository interface {
	Append(ctx context.Context, deploymentID int64, level, message, detail string) error
	ListByDeploymentID(ctx context.Context, deploymentID int64, filter DeploymentLogFilter) ([]*model.DeploymentLog, int64, error)
	DeleteByDeploymentID(ctx context.Context, deploymentID int64) error
}

func NewDeploymentLogRepository(
	repository *Repository,
) DeploymentLogRepository {
	return &deploymentLogRepository{
		Repository: repository,
	}
}

type deploymentLogRepository struct {
	*Repository
}

// Append 追加一条日志；日志一经写入不再修改
func (r *deploymentLogRepository) Append(ctx context.Context, deploymentID int64, level, message, detail string) error {
	entry := &model.DeploymentLog{
		DeploymentID: deploymentID,
		Level:        level,
		Message:      message,
		Detail:       detail,
	}
	return r.DB(ctx).Create(entry).Error
}

// ListByDeploymentID 按时间倒序返回日志
func (r *deploymentLogRepository) ListByDeploymentID(ctx context.Context, deploymentID int64, filter DeploymentLogFilter) ([]*model.DeploymentLog, int64, error) {
	var logs []*model.DeploymentLog
	var total int64

	query := r.DB(ctx).Model(&model.DeploymentLog{}).Where("deployment_id = ?", deploymentID)

	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Since != nil {
		query = query.Where("gmt_create >= ?", *filter.Since)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if err := query.Order("gmt_create DESC, id DESC").
		Offset(filter.Offset).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// DeleteByDeploymentID 仅供所属配置级联删除使用
func (r *deploymentLogRepository) DeleteByDeploymentID(ctx context.Context, deploymentID int64) error {
	return r.DB(ctx).Where("deployment_id = ?", deploymentID).Delete(&model.DeploymentLog{}).Error
}
