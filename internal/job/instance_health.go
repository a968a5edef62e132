package job

import (
	"context"

	"odoosphere/internal/repository"
	"odoosphere/internal/service"
	"odoosphere/pkg/log"

	"go.uber.org/zap"
)

type InstanceHealthJob interface {
	// CheckAllInstances 轮询所有启用实例的健康状态
	CheckAllInstances(ctx context.Context) error
}

func NewInstanceHealthJob(
	job *Job,
	instanceRepo repository.OdooInstanceRepository,
	instanceService service.OdooInstanceService,
	logger *log.Logger,
) InstanceHealthJob {
	return &instanceHealthJob{
		instanceRepo:    instanceRepo,
		instanceService: instanceService,
		Job:             job,
		logger:          logger,
	}
}

type instanceHealthJob struct {
	instanceRepo    repository.OdooInstanceRepository
	instanceService service.OdooInstanceService
	*Job
	logger *log.Logger
}

func (j *instanceHealthJob) CheckAllInstances(ctx context.Context) error {
	instances, err := j.instanceRepo.List(ctx)
	if err != nil {
		j.logger.Error("failed to list instances", zap.Error(err))
		return err
	}

	for _, instance := range instances {
		if instance.IsEnabled == 0 {
			continue
		}
		health, err := j.instanceService.CheckHealth(ctx, instance.Id)
		if err != nil {
			j.logger.Warn("health check error",
				zap.Error(err), zap.Int64("instance_id", instance.Id))
			continue
		}
		if health.Status != instance.Status {
			j.logger.Info("instance status changed",
				zap.Int64("instance_id", instance.Id),
				zap.String("from", instance.Status),
				zap.String("to", health.Status))
		}
	}
	return nil
}
