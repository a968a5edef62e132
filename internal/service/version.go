package service

import (
	"context"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/hash"
	"odoosphere/pkg/log"

	"go.uber.org/zap"
)

type VersionService interface {
	// Snapshot 部署成功后捕获配置内容快照；内容与最新版本一致时复用旧版本号
	Snapshot(ctx context.Context, configurationID int64, content string, deploymentID int64) (int, error)
	ListVersions(ctx context.Context, configurationID int64) ([]v1.ConfigurationVersionItem, error)
	GetVersion(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error)
}

func NewVersionService(
	service *Service,
	configRepo repository.ConfigurationRepository,
	versionRepo repository.ConfigurationVersionRepository,
	logger *log.Logger,
) VersionService {
	return &versionService{
		configRepo:  configRepo,
		versionRepo: versionRepo,
		Service:     service,
		logger:      logger,
	}
}

type versionService struct {
	configRepo  repository.ConfigurationRepository
	versionRepo repository.ConfigurationVersionRepository
	*Service
	logger *log.Logger
}

func (s *versionService) Snapshot(ctx context.Context, configurationID int64, content string, deploymentID int64) (int, error) {
	contentHash := hash.CalculateContentHash(content)

	latest, err := s.versionRepo.GetLatest(ctx, configurationID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get latest version", zap.Error(err), zap.Int64("configuration_id", configurationID))
		return 0, err
	}
	if latest != nil && latest.ContentHash == contentHash {
		// 内容未变，不产生新版本
		return latest.VersionNumber, nil
	}

	maxNumber, err := s.versionRepo.MaxVersionNumber(ctx, configurationID)
	if err != nil {
		return 0, err
	}
	next := maxNumber + 1

	version := &model.ConfigurationVersion{
		ConfigurationID: configurationID,
		VersionNumber:   next,
		Content:         content,
		ContentHash:     contentHash,
		DeploymentID:    &deploymentID,
		DeployedAt:      time.Now(),
	}
	if err = s.versionRepo.Create(ctx, version); err != nil {
		s.logger.WithContext(ctx).Error("failed to create configuration version",
			zap.Error(err), zap.Int64("configuration_id", configurationID), zap.Int("version_number", next))
		return 0, err
	}
	if err = s.configRepo.UpdateCurrentVersion(ctx, configurationID, next); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *versionService) ListVersions(ctx context.Context, configurationID int64) ([]v1.ConfigurationVersionItem, error) {
	configuration, err := s.configRepo.GetByID(ctx, configurationID)
	if err != nil {
		return nil, err
	}
	if configuration == nil {
		return nil, v1.ErrConfigurationNotFound
	}

	versions, err := s.versionRepo.ListByConfigurationID(ctx, configurationID)
	if err != nil {
		return nil, err
	}
	items := make([]v1.ConfigurationVersionItem, 0, len(versions))
	for _, version := range versions {
		items = append(items, v1.ConfigurationVersionItem{
			Id:            version.Id,
			VersionNumber: version.VersionNumber,
			ContentHash:   version.ContentHash,
			DeploymentID:  version.DeploymentID,
			DeployedAt:    version.DeployedAt,
			IsCurrent:     version.VersionNumber == configuration.CurrentVersion,
		})
	}
	return items, nil
}

func (s *versionService) GetVersion(ctx context.Context, configurationID int64, versionNumber int) (*model.ConfigurationVersion, error) {
	version, err := s.versionRepo.GetByNumber(ctx, configurationID, versionNumber)
	if err != nil {
		return nil, err
	}
	if version == nil {
		return nil, v1.ErrVersionNotFound
	}
	return version, nil
}
