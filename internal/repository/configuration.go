package repository

import (
	"context"

	"odoosphere/internal/model"

	"gorm.io/gorm"
)

type ConfigurationRepository interface {
	Create(ctx context.Context, configuration *model.Configuration) error
	Update(ctx context.Context, configuration *model.Configuration) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Configuration, error)
	ListWithPagination(ctx context.Context, page, pageSize int, companyID *int64, configType, status string) ([]*model.Configuration, int64, error)
	ListDeployedByTypeAndCompany(ctx context.Context, configType string, companyID int64) ([]*model.Configuration, error)
	UpdateStatus(ctx context.Context, id int64, status, reviewComment string) error
	UpdateCurrentVersion(ctx context.Context, id int64, version int) error
}

func NewConfigurationRepository(
	repository *Repository,
) ConfigurationRepository {
	return &configurationRepository{
		Repository: repository,
	}
}

type configurationRepository struct {
	*Repository
}

func (r *configurationRepository) Create(ctx context.Context, configuration *model.Configuration) error {
	return r.DB(ctx).Create(configuration).Error
}

func (r *configurationRepository) Update(ctx context.Context, configuration *model.Configuration) error {
	return r.DB(ctx).Save(configuration).Error
}

func (r *configurationRepository) Delete(ctx context.Context, id int64) error {
	// 级联删除所属部署及其日志
	return r.Transaction(ctx, func(ctx context.Context) error {
		var deploymentIDs []int64
		if err := r.DB(ctx).Model(&model.Deployment{}).
			Where("configuration_id = ?", id).
			Pluck("id", &deploymentIDs).Error; err != nil {
			return err
		}
		if len(deploymentIDs) > 0 {
			if err := r.DB(ctx).Where("deployment_id IN ?", deploymentIDs).
				Delete(&model.DeploymentLog{}).Error; err != nil {
				return err
			}
			if err := r.DB(ctx).Where("configuration_id = ?", id).
				Delete(&model.Deployment{}).Error; err != nil {
				return err
			}
		}
		if err := r.DB(ctx).Where("configuration_id = ?", id).
			Delete(&model.ConfigurationVersion{}).Error; err != nil {
			return err
		}
		return r.DB(ctx).Delete(&model.Configuration{}, id).Error
	})
}

func (r *configurationRepository) GetByID(ctx context.Context, id int64) (*model.Configuration, error) {
	var configuration model.Configuration
	err := r.DB(ctx).Where("id = ?", id).First(&configuration).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (r *configurationRepository) ListWithPagination(ctx context.Context, page, pageSize int, companyID *int64, configType, status string) ([]*model.Configuration, int64, error) {
	var configurations []*model.Configuration
	var total int64

	query := r.DB(ctx).Model(&model.Configuration{})

	if companyID != nil && *companyID > 0 {
		query = query.Where("company_id = ?", *companyID)
	}
	if configType != "" {
		query = query.Where("config_type = ?", configType)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("gmt_modified DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&configurations).Error; err != nil {
		return nil, 0, err
	}

	return configurations, total, nil
}

func (r *configurationRepository) ListDeployedByTypeAndCompany(ctx context.Context, configType string, companyID int64) ([]*model.Configuration, error) {
	var configurations []*model.Configuration
	err := r.DB(ctx).
		Where("config_type = ? AND company_id = ? AND status = ?", configType, companyID, model.ConfigStatusDeployed).
		Find(&configurations).Error
	if err != nil {
		return nil, err
	}
	return configurations, nil
}

func (r *configurationRepository) UpdateStatus(ctx context.Context, id int64, status, reviewComment string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if reviewComment != "" {
		updates["review_comment"] = reviewComment
	}
	return r.DB(ctx).Model(&model.Configuration{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *configurationRepository) UpdateCurrentVersion(ctx context.Context, id int64, version int) error {
	return r.DB(ctx).Model(&model.Configuration{}).
		Where("id = ?", id).
		Update("current_version", version).Error
}
