package service

import (
	"context"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"go.uber.org/zap"
)

var validConfigTypes = map[string]bool{
	model.ConfigTypeModel:           true,
	model.ConfigTypeView:            true,
	model.ConfigTypeWorkflow:        true,
	model.ConfigTypeSecurity:        true,
	model.ConfigTypeReport:          true,
	model.ConfigTypeKickoffTemplate: true,
}

type ConfigurationService interface {
	CreateConfiguration(ctx context.Context, req *v1.CreateConfigurationRequest, creator string) (int64, error)
	UpdateConfiguration(ctx context.Context, id int64, req *v1.UpdateConfigurationRequest, modifier string) error
	DeleteConfiguration(ctx context.Context, id int64) error
	GetConfiguration(ctx context.Context, id int64) (*v1.ConfigurationDetail, error)
	ListConfigurations(ctx context.Context, req *v1.ListConfigurationRequest) (*v1.ListConfigurationResponseData, error)
	// SubmitForReview draft / needs_changes -> pending_review
	SubmitForReview(ctx context.Context, id int64) error
	// ReviewConfiguration pending_review -> approved / needs_changes / rejected
	ReviewConfiguration(ctx context.Context, id int64, req *v1.ReviewConfigurationRequest) error
	ValidateConfiguration(ctx context.Context, id, instanceID int64) (*v1.ValidationResultData, error)
}

func NewConfigurationService(
	service *Service,
	configRepo repository.ConfigurationRepository,
	validationService ValidationService,
	logger *log.Logger,
) ConfigurationService {
	return &configurationService{
		configRepo:        configRepo,
		validationService: validationService,
		Service:           service,
		logger:            logger,
	}
}

type configurationService struct {
	configRepo        repository.ConfigurationRepository
	validationService ValidationService
	*Service
	logger *log.Logger
}

func (s *configurationService) CreateConfiguration(ctx context.Context, req *v1.CreateConfigurationRequest, creator string) (int64, error) {
	if !validConfigTypes[req.ConfigType] {
		return 0, v1.ErrInvalidConfigType
	}
	configuration := &model.Configuration{
		Name:       req.Name,
		CompanyID:  req.CompanyID,
		ConfigType: req.ConfigType,
		Content:    req.Content,
		FilePath:   req.FilePath,
		Status:     model.ConfigStatusDraft,
		Creator:    creator,
		Modifier:   creator,
	}
	if err := s.configRepo.Create(ctx, configuration); err != nil {
		s.logger.WithContext(ctx).Error("failed to create configuration", zap.Error(err))
		return 0, v1.ErrInternalServerError
	}
	return configuration.Id, nil
}

func (s *configurationService) UpdateConfiguration(ctx context.Context, id int64, req *v1.UpdateConfigurationRequest, modifier string) error {
	configuration, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		configuration.Name = *req.Name
	}
	if req.FilePath != nil {
		configuration.FilePath = *req.FilePath
	}
	if req.Content != nil && *req.Content != configuration.Content {
		// 内容变更后原评审结论失效，回到草稿
		configuration.Content = *req.Content
		if configuration.Status != model.ConfigStatusDeployed {
			configuration.Status = model.ConfigStatusDraft
			configuration.ReviewComment = ""
		}
	}
	configuration.Modifier = modifier

	if err = s.configRepo.Update(ctx, configuration); err != nil {
		s.logger.WithContext(ctx).Error("failed to update configuration", zap.Error(err), zap.Int64("id", id))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *configurationService) DeleteConfiguration(ctx context.Context, id int64) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.configRepo.Delete(ctx, id)
}

func (s *configurationService) GetConfiguration(ctx context.Context, id int64) (*v1.ConfigurationDetail, error) {
	configuration, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &v1.ConfigurationDetail{
		ConfigurationItem: toConfigurationItem(configuration),
		Content:           configuration.Content,
		ReviewComment:     configuration.ReviewComment,
		CreateTime:        configuration.CreateTime,
	}, nil
}

func (s *configurationService) ListConfigurations(ctx context.Context, req *v1.ListConfigurationRequest) (*v1.ListConfigurationResponseData, error) {
	configurations, total, err := s.configRepo.ListWithPagination(ctx, req.Page, req.PageSize, req.CompanyID, req.ConfigType, req.Status)
	if err != nil {
		return nil, err
	}
	list := make([]v1.ConfigurationItem, 0, len(configurations))
	for _, configuration := range configurations {
		list = append(list, toConfigurationItem(configuration))
	}
	return &v1.ListConfigurationResponseData{Total: total, List: list}, nil
}

func (s *configurationService) SubmitForReview(ctx context.Context, id int64) error {
	configuration, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if configuration.Status != model.ConfigStatusDraft && configuration.Status != model.ConfigStatusNeedsChanges {
		return v1.ErrInvalidStatusChange
	}
	return s.configRepo.UpdateStatus(ctx, id, model.ConfigStatusPendingReview, "")
}

func (s *configurationService) ReviewConfiguration(ctx context.Context, id int64, req *v1.ReviewConfigurationRequest) error {
	configuration, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if configuration.Status != model.ConfigStatusPendingReview {
		return v1.ErrInvalidStatusChange
	}
	switch req.Decision {
	case model.ConfigStatusApproved, model.ConfigStatusNeedsChanges, model.ConfigStatusRejected:
	default:
		return v1.ErrInvalidStatusChange
	}
	return s.configRepo.UpdateStatus(ctx, id, req.Decision, req.Comment)
}

func (s *configurationService) ValidateConfiguration(ctx context.Context, id, instanceID int64) (*v1.ValidationResultData, error) {
	configuration, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.validationService.Validate(ctx, configuration, instanceID)
}

func (s *configurationService) get(ctx context.Context, id int64) (*model.Configuration, error) {
	configuration, err := s.configRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get configuration", zap.Error(err), zap.Int64("id", id))
		return nil, v1.ErrInternalServerError
	}
	if configuration == nil {
		return nil, v1.ErrConfigurationNotFound
	}
	return configuration, nil
}

func toConfigurationItem(configuration *model.Configuration) v1.ConfigurationItem {
	return v1.ConfigurationItem{
		Id:             configuration.Id,
		Name:           configuration.Name,
		CompanyID:      configuration.CompanyID,
		ConfigType:     configuration.ConfigType,
		FilePath:       configuration.FilePath,
		Status:         configuration.Status,
		CurrentVersion: configuration.CurrentVersion,
		UpdateTime:     configuration.UpdateTime,
	}
}
