package repository

import (
	"context"
	"time"

	"odoosphere/internal/model"

	"gorm.io/gorm"
)

// DeploymentStatusUpdate 部分更新载荷，nil 字段不更新
type DeploymentStatusUpdate struct {
	Status       *string
	Progress     *int
	CurrentStep  *string
	Result       *string
	ErrorMessage *string
	ErrorStack   *string
	BackupID     *int64
	CanRollback  *int8
}

// DeploymentMetricsFilter 指标聚合过滤条件
type DeploymentMetricsFilter struct {
	InstanceID *int64
	ConfigType string
	StartTime  *time.Time
	EndTime    *time.Time
}

type DeploymentRepository interface {
	Create(ctx context.Context, deployment *model.Deployment) error
	GetByID(ctx context.Context, id int64) (*model.Deployment, error)
	ListWithPagination(ctx context.Context, page, pageSize int, instanceID, configurationID *int64, status string) ([]*model.Deployment, int64, error)
	UpdateStatus(ctx context.Context, id int64, update DeploymentStatusUpdate) error
	MarkStarted(ctx context.Context, id int64, startedAt time.Time) error
	MarkCompleted(ctx context.Context, id int64, status string, completedAt time.Time, durationMs int64) error
	MarkRolledBack(ctx context.Context, id int64, rolledBackAt time.Time) error
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*model.Deployment, error)
	CountByStatus(ctx context.Context, filter DeploymentMetricsFilter) (map[string]int64, error)
	CountByType(ctx context.Context, filter DeploymentMetricsFilter) (map[string]int64, error)
	AvgDurationMs(ctx context.Context, filter DeploymentMetricsFilter) (int64, error)
	ListRecent(ctx context.Context, filter DeploymentMetricsFilter, limit int) ([]*model.Deployment, error)
}

func NewDeploymentRepository(
	repository *Repository,
) DeploymentRepository {
	return &deploymentRepository{
		Repository: repository,
	}
}

type deploymentRepository struct {
	*Repository
}

func (r *deploymentRepository) Create(ctx context.Context, deployment *model.Deployment) error {
	return r.DB(ctx).Create(deployment).Error
}

func (r *deploymentRepository) GetByID(ctx context.Context, id int64) (*model.Deployment, error) {
	var deployment model.Deployment
	err := r.DB(ctx).Where("id = ?", id).First(&deployment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deployment, nil
}

func (r *deploymentRepository) ListWithPagination(ctx context.Context, page, pageSize int, instanceID, configurationID *int64, status string) ([]*model.Deployment, int64, error) {
	var deployments []*model.Deployment
	var total int64

	query := r.DB(ctx).Model(&model.Deployment{})

	if instanceID != nil && *instanceID > 0 {
		query = query.Where("instance_id = ?", *instanceID)
	}
	if configurationID != nil && *configurationID > 0 {
		query = query.Where("configuration_id = ?", *configurationID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("gmt_create DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&deployments).Error; err != nil {
		return nil, 0, err
	}

	return deployments, total, nil
}

func (r *deploymentRepository) UpdateStatus(ctx context.Context, id int64, update DeploymentStatusUpdate) error {
	updates := map[string]interface{}{}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.Progress != nil {
		updates["progress"] = *update.Progress
	}
	if update.CurrentStep != nil {
		updates["current_step"] = *update.CurrentStep
	}
	if update.Result != nil {
		updates["result"] = *update.Result
	}
	if update.ErrorMessage != nil {
		updates["error_message"] = *update.ErrorMessage
	}
	if update.ErrorStack != nil {
		updates["error_stack"] = *update.ErrorStack
	}
	if update.BackupID != nil {
		updates["backup_id"] = *update.BackupID
	}
	if update.CanRollback != nil {
		updates["can_rollback"] = *update.CanRollback
	}
	if len(updates) == 0 {
		return nil
	}
	return r.DB(ctx).Model(&model.Deployment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *deploymentRepository) MarkStarted(ctx context.Context, id int64, startedAt time.Time) error {
	return r.DB(ctx).Model(&model.Deployment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.DeploymentStatusInProgress,
			"started_at": startedAt,
		}).Error
}

// MarkCompleted 终态转移，completed_at 只写一次
func (r *deploymentRepository) MarkCompleted(ctx context.Context, id int64, status string, completedAt time.Time, durationMs int64) error {
	return r.DB(ctx).Model(&model.Deployment{}).
		Where("id = ? AND completed_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
			"duration_ms":  durationMs,
		}).Error
}

func (r *deploymentRepository) MarkRolledBack(ctx context.Context, id int64, rolledBackAt time.Time) error {
	return r.DB(ctx).Model(&model.Deployment{}).
		Where("id = ? AND status = ?", id, model.DeploymentStatusSuccess).
		Updates(map[string]interface{}{
			"status":         model.DeploymentStatusRolledBack,
			"rolled_back_at": rolledBackAt,
		}).Error
}

func (r *deploymentRepository) ListUpdatedSince(ctx context.Context, since time.Time) ([]*model.Deployment, error) {
	var deployments []*model.Deployment
	err := r.DB(ctx).
		Where("gmt_modified >= ?", since).
		Order("gmt_modified ASC").
		Find(&deployments).Error
	if err != nil {
		return nil, err
	}
	return deployments, nil
}

func (r *deploymentRepository) metricsQuery(ctx context.Context, filter DeploymentMetricsFilter) *gorm.DB {
	query := r.DB(ctx).Model(&model.Deployment{})
	if filter.InstanceID != nil && *filter.InstanceID > 0 {
		query = query.Where("instance_id = ?", *filter.InstanceID)
	}
	if filter.ConfigType != "" {
		query = query.Where("config_type = ?", filter.ConfigType)
	}
	if filter.StartTime != nil {
		query = query.Where("gmt_create >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("gmt_create <= ?", *filter.EndTime)
	}
	return query
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *deploymentRepository) CountByStatus(ctx context.Context, filter DeploymentMetricsFilter) (map[string]int64, error) {
	var rows []statusCountRow
	err := r.metricsQuery(ctx, filter).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

type typeCountRow struct {
	ConfigType string
	Count      int64
}

func (r *deploymentRepository) CountByType(ctx context.Context, filter DeploymentMetricsFilter) (map[string]int64, error) {
	var rows []typeCountRow
	err := r.metricsQuery(ctx, filter).
		Select("config_type, COUNT(*) AS count").
		Group("config_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.ConfigType] = row.Count
	}
	return result, nil
}

func (r *deploymentRepository) AvgDurationMs(ctx context.Context, filter DeploymentMetricsFilter) (int64, error) {
	var avg *float64
	err := r.metricsQuery(ctx, filter).
		Where("completed_at IS NOT NULL").
		Select("AVG(duration_ms)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return int64(*avg), nil
}

func (r *deploymentRepository) ListRecent(ctx context.Context, filter DeploymentMetricsFilter, limit int) ([]*model.Deployment, error) {
	var deployments []*model.Deployment
	err := r.metricsQuery(ctx, filter).
		Order("gmt_create DESC").
		Limit(limit).
		Find(&deployments).Error
	if err != nil {
		return nil, err
	}
	return deployments, nil
}
