package server

import (
	"context"
	"time"

	"odoosphere/internal/job"
	"odoosphere/pkg/log"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

type JobServer struct {
	log       *log.Logger
	scheduler *gocron.Scheduler

	deploymentMonitorJob job.DeploymentMonitorJob
	instanceHealthJob    job.InstanceHealthJob
}

func NewJobServer(
	log *log.Logger,
	deploymentMonitorJob job.DeploymentMonitorJob,
	instanceHealthJob job.InstanceHealthJob,
) *JobServer {
	return &JobServer{
		log:                  log,
		scheduler:            gocron.NewScheduler(time.UTC),
		deploymentMonitorJob: deploymentMonitorJob,
		instanceHealthJob:    instanceHealthJob,
	}
}

func (j *JobServer) Start(ctx context.Context) error {
	// 卡死部署巡检
	_, err := j.scheduler.Every(1).Minute().Do(func() {
		if err := j.deploymentMonitorJob.SweepStuckDeployments(ctx); err != nil {
			j.log.Error("SweepStuckDeployments error", zap.Error(err))
		}
	})
	if err != nil {
		j.log.Error("SweepStuckDeployments schedule error", zap.Error(err))
	}

	// 实例健康轮询
	_, err = j.scheduler.Every(5).Minutes().Do(func() {
		if err := j.instanceHealthJob.CheckAllInstances(ctx); err != nil {
			j.log.Error("CheckAllInstances error", zap.Error(err))
		}
	})
	if err != nil {
		j.log.Error("CheckAllInstances schedule error", zap.Error(err))
	}

	j.scheduler.StartBlocking()
	return nil
}
func (j *JobServer) Stop(ctx context.Context) error {
	j.scheduler.Stop()
	return nil
}
