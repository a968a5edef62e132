package service

import (
	"context"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"
)

type MonitoringService interface {
	// GetMetrics 按实例/类型/时间窗聚合部署指标
	GetMetrics(ctx context.Context, req *v1.DeploymentMetricsRequest) (*v1.DeploymentMetricsData, error)
}

func NewMonitoringService(
	service *Service,
	deploymentRepo repository.DeploymentRepository,
	logger *log.Logger,
) MonitoringService {
	return &monitoringService{
		deploymentRepo: deploymentRepo,
		Service:        service,
		logger:         logger,
	}
}

type monitoringService struct {
	deploymentRepo repository.DeploymentRepository
	*Service
	logger *log.Logger
}

func (s *monitoringService) GetMetrics(ctx context.Context, req *v1.DeploymentMetricsRequest) (*v1.DeploymentMetricsData, error) {
	filter := repository.DeploymentMetricsFilter{
		InstanceID: req.InstanceID,
		ConfigType: req.ConfigType,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	byStatus, err := s.deploymentRepo.CountByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}
	byType, err := s.deploymentRepo.CountByType(ctx, filter)
	if err != nil {
		return nil, err
	}
	avgDuration, err := s.deploymentRepo.AvgDurationMs(ctx, filter)
	if err != nil {
		return nil, err
	}

	recentN := req.RecentN
	if recentN <= 0 {
		recentN = 10
	}
	recent, err := s.deploymentRepo.ListRecent(ctx, filter, recentN)
	if err != nil {
		return nil, err
	}
	recentList := make([]v1.DeploymentDetail, 0, len(recent))
	for _, deployment := range recent {
		recentList = append(recentList, toDeploymentDetail(deployment))
	}

	var total int64
	for _, count := range byStatus {
		total += count
	}

	return &v1.DeploymentMetricsData{
		Total:           total,
		SuccessCount:    byStatus[model.DeploymentStatusSuccess],
		FailedCount:     byStatus[model.DeploymentStatusFailed],
		RolledBackCount: byStatus[model.DeploymentStatusRolledBack],
		AvgDurationMs:   avgDuration,
		ByType:          byType,
		ByStatus:        byStatus,
		Recent:          recentList,
	}, nil
}
