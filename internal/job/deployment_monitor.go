package job

import (
	"context"
	"time"

	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type DeploymentMonitorJob interface {
	// SweepStuckDeployments 把超过两倍超时时间没有任何更新的 in_progress 部署判定为失败
	SweepStuckDeployments(ctx context.Context) error
}

func NewDeploymentMonitorJob(
	job *Job,
	conf *viper.Viper,
	deploymentRepo repository.DeploymentRepository,
	logRepo repository.DeploymentLogRepository,
	logger *log.Logger,
) DeploymentMonitorJob {
	timeout := conf.GetDuration("deploy.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &deploymentMonitorJob{
		staleAfter:     2 * timeout,
		deploymentRepo: deploymentRepo,
		logRepo:        logRepo,
		Job:            job,
		logger:         logger,
	}
}

type deploymentMonitorJob struct {
	staleAfter     time.Duration
	deploymentRepo repository.DeploymentRepository
	logRepo        repository.DeploymentLogRepository
	*Job
	logger *log.Logger
}

func (j *deploymentMonitorJob) SweepStuckDeployments(ctx context.Context) error {
	// 回看 24 小时内有过更新的记录，筛出此后再无动静的
	deployments, err := j.deploymentRepo.ListUpdatedSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		j.logger.Error("failed to list recent deployments", zap.Error(err))
		return err
	}

	cutoff := time.Now().Add(-j.staleAfter)
	for _, deployment := range deployments {
		if deployment.Status != model.DeploymentStatusInProgress {
			continue
		}
		if deployment.UpdateTime.After(cutoff) {
			continue
		}

		msg := "deployment marked failed by monitor: no progress updates"
		if err = j.deploymentRepo.UpdateStatus(ctx, deployment.Id, repository.DeploymentStatusUpdate{
			ErrorMessage: &msg,
		}); err != nil {
			j.logger.Error("failed to fail stuck deployment",
				zap.Error(err), zap.Int64("deployment_id", deployment.Id))
			continue
		}
		// 终态转移必须落 completed_at，带守卫防止覆盖已完成的记录
		if err = j.deploymentRepo.MarkCompleted(ctx, deployment.Id, model.DeploymentStatusFailed, time.Now(), 0); err != nil {
			j.logger.Error("failed to mark stuck deployment completed",
				zap.Error(err), zap.Int64("deployment_id", deployment.Id))
			continue
		}
		if err = j.logRepo.Append(ctx, deployment.Id, model.LogLevelError, msg, ""); err != nil {
			j.logger.Error("failed to append monitor log", zap.Error(err))
		}
		j.logger.Warn("stuck deployment failed by monitor",
			zap.Int64("deployment_id", deployment.Id),
			zap.Time("last_update", deployment.UpdateTime))
	}
	return nil
}
