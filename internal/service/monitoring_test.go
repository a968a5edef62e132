package service

import (
	"context"
	"testing"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestGetMetrics(t *testing.T) {
	deploymentRepo := newFakeDeploymentRepo(
		&model.Deployment{Id: 1, Status: model.DeploymentStatusSuccess, ConfigType: model.ConfigTypeKickoffTemplate},
		&model.Deployment{Id: 2, Status: model.DeploymentStatusSuccess, ConfigType: model.ConfigTypeView},
		&model.Deployment{Id: 3, Status: model.DeploymentStatusFailed, ConfigType: model.ConfigTypeKickoffTemplate},
		&model.Deployment{Id: 4, Status: model.DeploymentStatusRolledBack, ConfigType: model.ConfigTypeKickoffTemplate},
	)
	svc := NewMonitoringService(newTestService(), deploymentRepo, newTestLogger())

	metrics, err := svc.GetMetrics(context.Background(), &v1.DeploymentMetricsRequest{})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), metrics.Total)
	assert.Equal(t, int64(2), metrics.SuccessCount)
	assert.Equal(t, int64(1), metrics.FailedCount)
	assert.Equal(t, int64(1), metrics.RolledBackCount)
	assert.Equal(t, int64(3), metrics.ByType[model.ConfigTypeKickoffTemplate])
	assert.Len(t, metrics.Recent, 4)
}
