package service

import (
	"context"
	"testing"

	"odoosphere/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestTrackerProgressMonotonic(t *testing.T) {
	deploymentRepo := newFakeDeploymentRepo(&model.Deployment{Id: 1, Status: model.DeploymentStatusInProgress})
	tracker := newProgressTracker(1, deploymentRepo, &fakeLogRepo{}, newTestLogger())

	ctx := context.Background()
	tracker.Step(ctx, 40, "applying configuration")
	tracker.Step(ctx, 20, "late update") // 进度不允许回退

	deployment, err := deploymentRepo.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 40, deployment.Progress)
	assert.Equal(t, "late update", deployment.CurrentStep)
}

func TestTrackerAppendsLogs(t *testing.T) {
	logRepo := &fakeLogRepo{}
	tracker := newProgressTracker(1, newFakeDeploymentRepo(&model.Deployment{Id: 1}), logRepo, newTestLogger())

	ctx := context.Background()
	tracker.Step(ctx, 5, "authenticating")
	tracker.Warningf(ctx, "module %s not available", "crm")
	tracker.Error(ctx, "execution failed", "stack trace here")

	assert.Len(t, logRepo.entries, 3)
	assert.Equal(t, model.LogLevelInfo, logRepo.entries[0].Level)
	assert.Equal(t, model.LogLevelWarning, logRepo.entries[1].Level)
	assert.Equal(t, "module crm not available", logRepo.entries[1].Message)
	assert.Equal(t, model.LogLevelError, logRepo.entries[2].Level)
	assert.Equal(t, "stack trace here", logRepo.entries[2].Detail)
}
