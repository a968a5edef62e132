package repository

import (
	"context"

	"odoosphere/internal/model"

	"gorm.io/gorm"
)

type ConfigurationVersionRepository interface {
	Create(ctx context.Context, version *model.ConfigurationVersion) error
	GetByNumber(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error)
	GetLatest(ctx context.Context, configurationID int64) (*model.ConfigurationVersion, error)
	GetLatestBefore(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error)
	MaxVersionNumber(ctx context.Context, configurationID int64) (int, error)
	ListByConfigurationID(ctx context.Context, configurationID int64) ([]*model.ConfigurationVersion, error)
}

func NewConfigurationVersionRepository(
	repository *Repository,
) ConfigurationVersionRepository {
	return &configurationVersionRepository{
		Repository: repository,
	}
}

type configurationVersionRepository struct {
	*Repository
}

func (r *configurationVersionRepository) Create(ctx context.Context, version *model.ConfigurationVersion) error {
	return r.DB(ctx).Create(version).Error
}

func (r *configurationVersionRepository) GetByNumber(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error) {
	var version model.ConfigurationVersion
	err := r.DB(ctx).
		Where("configuration_id = ? AND version_number = ?", configurationID, versionNumber).
		First(&version).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *configurationVersionRepository) GetLatest(ctx context.Context, configurationID int64) (*model.ConfigurationVersion, error) {
	var version model.ConfigurationVersion
	err := r.DB(ctx).
		Where("configuration_id = ?", configurationID).
		Order("version_number DESC").
		First(&version).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *configurationVersionRepository) GetLatestBefore(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error) {
	var version model.ConfigurationVersion
	err := r.DB(ctx).
		Where("configuration_id = ? AND version_number < ?", configurationID, versionNumber).
		Order("version_number DESC").
		First(&version).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *configurationVersionRepository) MaxVersionNumber(ctx context.Context, configurationID int64) (int, error) {
	var max *int
	err := r.DB(ctx).Model(&model.ConfigurationVersion{}).
		Where("configuration_id = ?", configurationID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *configurationVersionRepository) ListByConfigurationID(ctx context.Context, configurationID int64) ([]*model.ConfigurationVersion, error) {
	var versions []*model.ConfigurationVersion
	err := r.DB(ctx).
		Where("configuration_id = ?", configurationID).
		Order("version_number DESC").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}
