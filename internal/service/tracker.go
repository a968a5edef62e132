package service

import (
	"context"
	"fmt"

	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"go.uber.org/zap"
)

// progressTracker 单次部署的进度与日志写入器
// 进度只增不减；日志只追加，失败不中断部署流程
type progressTracker struct {
	deploymentID   int64
	deploymentRepo repository.DeploymentRepository
	logRepo        repository.DeploymentLogRepository
	logger         *log.Logger
	lastProgress   int
}

func newProgressTracker(
	deploymentID int64,
	deploymentRepo repository.DeploymentRepository,
	logRepo repository.DeploymentLogRepository,
	logger *log.Logger,
) *progressTracker {
	return &progressTracker{
		deploymentID:   deploymentID,
		deploymentRepo: deploymentRepo,
		logRepo:        logRepo,
		logger:         logger,
	}
}

// Step 更新进度百分比与当前步骤描述，同时写一条 info 日志
func (t *progressTracker) Step(ctx context.Context, progress int, step string) {
	if progress < t.lastProgress {
		progress = t.lastProgress
	}
	t.lastProgress = progress
	err := t.deploymentRepo.UpdateStatus(ctx, t.deploymentID, repository.DeploymentStatusUpdate{
		Progress:    &progress,
		CurrentStep: &step,
	})
	if err != nil {
		t.logger.WithContext(ctx).Error("failed to update deployment progress",
			zap.Error(err), zap.Int64("deployment_id", t.deploymentID))
	}
	t.Info(ctx, step, "")
}

func (t *progressTracker) Debug(ctx context.Context, message, detail string) {
	t.append(ctx, model.LogLevelDebug, message, detail)
}

func (t *progressTracker) Info(ctx context.Context, message, detail string) {
	t.append(ctx, model.LogLevelInfo, message, detail)
}

func (t *progressTracker) Warning(ctx context.Context, message, detail string) {
	t.append(ctx, model.LogLevelWarning, message, detail)
}

func (t *progressTracker) Error(ctx context.Context, message, detail string) {
	t.append(ctx, model.LogLevelError, message, detail)
}

func (t *progressTracker) Infof(ctx context.Context, format string, args ...interface{}) {
	t.append(ctx, model.LogLevelInfo, fmt.Sprintf(format, args...), "")
}

func (t *progressTracker) Warningf(ctx context.Context, format string, args ...interface{}) {
	t.append(ctx, model.LogLevelWarning, fmt.Sprintf(format, args...), "")
}

func (t *progressTracker) Errorf(ctx context.Context, format string, args ...interface{}) {
	t.append(ctx, model.LogLevelError, fmt.Sprintf(format, args...), "")
}

func (t *progressTracker) append(ctx context.Context, level, message, detail string) {
	if err := t.logRepo.Append(ctx, t.deploymentID, level, message, detail); err != nil {
		t.logger.WithContext(ctx).Error("failed to append deployment log",
			zap.Error(err), zap.Int64("deployment_id", t.deploymentID))
	}
}
