package service

import (
	"context"
	"fmt"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"
	"odoosphere/pkg/vault"

	"go.uber.org/zap"
)

type OdooInstanceService interface {
	CreateInstance(ctx context.Context, req *v1.CreateInstanceRequest) (int64, error)
	UpdateInstance(ctx context.Context, id int64, req *v1.UpdateInstanceRequest) error
	DeleteInstance(ctx context.Context, id int64) error
	GetInstance(ctx context.Context, id int64) (*v1.InstanceDetail, error)
	ListInstances(ctx context.Context, req *v1.ListInstanceRequest) (*v1.ListInstanceResponseData, error)
	CheckHealth(ctx context.Context, id int64) (*v1.InstanceHealthData, error)
}

func NewOdooInstanceService(
	service *Service,
	instanceRepo repository.OdooInstanceRepository,
	factory ConnectorFactory,
	v *vault.Vault,
	logger *log.Logger,
) OdooInstanceService {
	return &odooInstanceService{
		instanceRepo: instanceRepo,
		factory:      factory,
		vault:        v,
		Service:      service,
		logger:       logger,
	}
}

type odooInstanceService struct {
	instanceRepo repository.OdooInstanceRepository
	factory      ConnectorFactory
	vault        *vault.Vault
	*Service
	logger *log.Logger
}

func (s *odooInstanceService) CreateInstance(ctx context.Context, req *v1.CreateInstanceRequest) (int64, error) {
	// 凭据入库前加密
	credentialCipher, err := s.vault.Encrypt(req.ApiKey)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to encrypt credential", zap.Error(err))
		return 0, v1.ErrInternalServerError
	}

	instance := &model.OdooInstance{
		InstanceName:     req.InstanceName,
		CompanyID:        req.CompanyID,
		ApiUrl:           req.ApiUrl,
		Database:         req.Database,
		Username:         req.Username,
		CredentialCipher: credentialCipher,
		OdooVersion:      req.OdooVersion,
		Env:              req.Env,
		Status:           model.InstanceStatusUnknown,
		IsEnabled:        req.IsEnabled,
		Describes:        req.Describes,
	}

	if req.MasterPwd != "" {
		masterCipher, err := s.vault.Encrypt(req.MasterPwd)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to encrypt master password", zap.Error(err))
			return 0, v1.ErrInternalServerError
		}
		instance.MasterPwdCipher = masterCipher
	}

	if err := s.instanceRepo.Create(ctx, instance); err != nil {
		s.logger.WithContext(ctx).Error("failed to create instance", zap.Error(err))
		return 0, v1.ErrInternalServerError
	}
	return instance.Id, nil
}

func (s *odooInstanceService) UpdateInstance(ctx context.Context, id int64, req *v1.UpdateInstanceRequest) error {
	instance, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.Error(err), zap.Int64("instance_id", id))
		return v1.ErrInternalServerError
	}
	if instance == nil {
		return v1.ErrInstanceNotFound
	}

	if req.InstanceName != nil {
		instance.InstanceName = *req.InstanceName
	}
	if req.ApiUrl != nil {
		instance.ApiUrl = *req.ApiUrl
	}
	if req.Database != nil {
		instance.Database = *req.Database
	}
	if req.Username != nil {
		instance.Username = *req.Username
	}
	if req.ApiKey != nil {
		cipher, err := s.vault.Encrypt(*req.ApiKey)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to encrypt credential", zap.Error(err))
			return v1.ErrInternalServerError
		}
		instance.CredentialCipher = cipher
	}
	if req.MasterPwd != nil {
		cipher, err := s.vault.Encrypt(*req.MasterPwd)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to encrypt master password", zap.Error(err))
			return v1.ErrInternalServerError
		}
		instance.MasterPwdCipher = cipher
	}
	if req.OdooVersion != nil {
		instance.OdooVersion = *req.OdooVersion
	}
	if req.Env != nil {
		instance.Env = *req.Env
	}
	if req.Describes != nil {
		instance.Describes = *req.Describes
	}
	if req.IsEnabled != nil {
		instance.IsEnabled = *req.IsEnabled
	}

	if err := s.instanceRepo.Update(ctx, instance); err != nil {
		s.logger.WithContext(ctx).Error("failed to update instance", zap.Error(err), zap.Int64("instance_id", id))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *odooInstanceService) DeleteInstance(ctx context.Context, id int64) error {
	instance, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.Error(err), zap.Int64("instance_id", id))
		return v1.ErrInternalServerError
	}
	if instance == nil {
		return v1.ErrInstanceNotFound
	}
	if err := s.instanceRepo.Delete(ctx, id); err != nil {
		s.logger.WithContext(ctx).Error("failed to delete instance", zap.Error(err), zap.Int64("instance_id", id))
		return v1.ErrInternalServerError
	}
	return nil
}

func (s *odooInstanceService) GetInstance(ctx context.Context, id int64) (*v1.InstanceDetail, error) {
	instance, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.Error(err), zap.Int64("instance_id", id))
		return nil, v1.ErrInternalServerError
	}
	if instance == nil {
		return nil, v1.ErrInstanceNotFound
	}

	return &v1.InstanceDetail{
		InstanceItem: toInstanceItem(instance),
		Username:     instance.Username,
		Describes:    instance.Describes,
		CreateTime:   instance.CreateTime,
		UpdateTime:   instance.UpdateTime,
	}, nil
}

func (s *odooInstanceService) ListInstances(ctx context.Context, req *v1.ListInstanceRequest) (*v1.ListInstanceResponseData, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	instances, total, err := s.instanceRepo.ListWithPagination(ctx, page, pageSize, req.CompanyID, req.Env, req.Status)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list instances", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}

	items := make([]v1.InstanceItem, 0, len(instances))
	for _, instance := range instances {
		items = append(items, toInstanceItem(instance))
	}
	return &v1.ListInstanceResponseData{
		Total: total,
		List:  items,
	}, nil
}

// CheckHealth 连接实例查询服务器版本并更新健康状态
func (s *odooInstanceService) CheckHealth(ctx context.Context, id int64) (*v1.InstanceHealthData, error) {
	instance, err := s.instanceRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.Error(err), zap.Int64("instance_id", id))
		return nil, v1.ErrInternalServerError
	}
	if instance == nil {
		return nil, v1.ErrInstanceNotFound
	}

	data := &v1.InstanceHealthData{InstanceID: id}

	conn, err := s.factory.Open(ctx, instance)
	if err != nil {
		data.Status = model.InstanceStatusOffline
		data.Error = err.Error()
		_ = s.instanceRepo.UpdateHealth(ctx, id, model.InstanceStatusOffline, time.Now())
		return data, nil
	}
	defer conn.Close()

	version, err := conn.Version(ctx)
	if err != nil {
		s.logger.WithContext(ctx).Warn("instance health check failed", zap.Error(err), zap.Int64("instance_id", id))
		data.Status = model.InstanceStatusOffline
		data.Error = err.Error()
		_ = s.instanceRepo.UpdateHealth(ctx, id, model.InstanceStatusOffline, time.Now())
		return data, nil
	}

	data.Status = model.InstanceStatusOnline
	if sv, ok := version["server_version"].(string); ok {
		data.ServerVersion = sv
	} else {
		data.ServerVersion = fmt.Sprintf("%v", version["server_version"])
	}
	if err := s.instanceRepo.UpdateHealth(ctx, id, model.InstanceStatusOnline, time.Now()); err != nil {
		s.logger.WithContext(ctx).Error("failed to update instance health", zap.Error(err), zap.Int64("instance_id", id))
	}
	return data, nil
}

func toInstanceItem(instance *model.OdooInstance) v1.InstanceItem {
	return v1.InstanceItem{
		Id:              instance.Id,
		InstanceName:    instance.InstanceName,
		CompanyID:       instance.CompanyID,
		ApiUrl:          instance.ApiUrl,
		Database:        instance.Database,
		OdooVersion:     instance.OdooVersion,
		Env:             instance.Env,
		Status:          instance.Status,
		LastHealthCheck: instance.LastHealthCheck,
		IsEnabled:       instance.IsEnabled,
	}
}
