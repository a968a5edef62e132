package service

import (
	"context"
	"errors"
	"testing"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"

	"github.com/stretchr/testify/assert"
)

func newTestExecutor(conn *fakeConnector) (*deploymentExecutor, *fakeLogRepo) {
	executor, _, logRepo := newTestExecutorWithRepo(conn)
	return executor, logRepo
}

func newTestExecutorWithRepo(conn *fakeConnector) (*deploymentExecutor, *fakeDeploymentRepo, *fakeLogRepo) {
	logRepo := &fakeLogRepo{}
	deploymentRepo := newFakeDeploymentRepo(&model.Deployment{Id: 1})
	tracker := newProgressTracker(1, deploymentRepo, logRepo, newTestLogger())
	return newDeploymentExecutor(conn, tracker), deploymentRepo, logRepo
}

func TestExecuteKickoffHappyPath(t *testing.T) {
	conn := &fakeConnector{}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	result, err := executor.Execute(context.Background(), configuration, `{
		"modules": [{"name": "CRM", "technical_name": "crm"}],
		"custom_fields": [{"model": "res.partner", "field_name": "x_code", "field_type": "char", "label": "Code"}],
		"workflows": [{"name": "Lead Flow", "model": "crm.lead", "states": [{"name": "new"}]}],
		"dashboards": [{"name": "Sales Overview", "view_type": "kanban", "components": [{"type": "chart"}]}],
		"module_configs": [{"module": "crm", "key": "auto_assign", "value": "1"}]
	}`)
	assert.NoError(t, err)
	assert.Equal(t, 5, result.TotalSteps)
	assert.Equal(t, 0, result.FailedSteps)

	assert.Equal(t, v1.StepStatusInstalled, result.Modules[0].Status)
	assert.Equal(t, v1.StepStatusCreated, result.CustomFields[0].Status)
	assert.Equal(t, int64(100), result.CustomFields[0].RemoteID)
	assert.Equal(t, v1.StepStatusApplied, result.Workflows[0].Status)
	assert.Equal(t, v1.StepStatusApplied, result.Dashboards[0].Status)
	assert.Equal(t, v1.StepStatusApplied, result.ModuleConfigs[0].Status)

	// 工作流/仪表盘落为带前缀的配置参数
	assert.Contains(t, conn.calls, "set_param:odoosphere.workflow.lead_flow")
	assert.Contains(t, conn.calls, "set_param:odoosphere.dashboard.sales_overview")
	assert.Contains(t, conn.calls, "set_param:crm.auto_assign")
}

func TestExecuteKickoffIdempotent(t *testing.T) {
	conn := &fakeConnector{
		findModuleFn: func(ctx context.Context, technicalName string) (map[string]interface{}, error) {
			return map[string]interface{}{"id": float64(5), "name": technicalName, "state": "installed"}, nil
		},
		findModelFieldFn: func(ctx context.Context, model, fieldName string) (map[string]interface{}, error) {
			return map[string]interface{}{"id": float64(77), "name": fieldName}, nil
		},
	}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	result, err := executor.Execute(context.Background(), configuration, `{
		"modules": [{"name": "CRM", "technical_name": "crm"}],
		"custom_fields": [{"model": "res.partner", "field_name": "x_code", "field_type": "char", "label": "Code"}]
	}`)
	assert.NoError(t, err)
	assert.Equal(t, 0, result.FailedSteps)
	// 已装模块报 installed，已有字段报 exists
	assert.Equal(t, v1.StepStatusInstalled, result.Modules[0].Status)
	assert.Equal(t, v1.StepStatusExists, result.CustomFields[0].Status)
	assert.Equal(t, int64(77), result.CustomFields[0].RemoteID)

	// 已存在的条目不再触发安装/创建
	assert.NotContains(t, conn.calls, "install_module:5")
	for _, call := range conn.calls {
		assert.NotContains(t, call, "create_field")
	}
}

func TestExecuteKickoffItemFailureIsolation(t *testing.T) {
	conn := &fakeConnector{
		installModuleFn: func(ctx context.Context, moduleID int64) error {
			return errors.New("dependency resolution failed")
		},
	}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	result, err := executor.Execute(context.Background(), configuration, `{
		"modules": [{"name": "CRM", "technical_name": "crm"}],
		"custom_fields": [{"model": "res.partner", "field_name": "x_code", "field_type": "char", "label": "Code"}]
	}`)
	assert.NoError(t, err)

	// 模块失败不阻断后续字段创建
	assert.Equal(t, v1.StepStatusFailed, result.Modules[0].Status)
	assert.Contains(t, result.Modules[0].Error, "dependency resolution failed")
	assert.Equal(t, v1.StepStatusCreated, result.CustomFields[0].Status)
	assert.Equal(t, 2, result.TotalSteps)
	assert.Equal(t, 1, result.FailedSteps)
}

func TestExecuteKickoffModuleNotFound(t *testing.T) {
	conn := &fakeConnector{
		findModuleFn: func(ctx context.Context, technicalName string) (map[string]interface{}, error) {
			return nil, nil
		},
	}
	executor, logRepo := newTestExecutor(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	result, err := executor.Execute(context.Background(), configuration, `{
		"modules": [{"name": "Custom Addon", "technical_name": "custom_addon"}]
	}`)
	assert.NoError(t, err)
	assert.Equal(t, v1.StepStatusNotFound, result.Modules[0].Status)
	// 模块不存在记警告，不计入失败步数
	assert.Equal(t, 0, result.FailedSteps)
	assert.Contains(t, logRepo.messages(), "module custom_addon not available on instance")
}

func TestExecuteKickoffInstallConfirmsState(t *testing.T) {
	// 安装调用成功但回读状态仍未安装
	conn := &fakeConnector{
		findModuleFn: func(ctx context.Context, technicalName string) (map[string]interface{}, error) {
			return map[string]interface{}{"id": float64(9), "name": technicalName, "state": "uninstalled"}, nil
		},
	}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	result, err := executor.Execute(context.Background(), configuration, `{
		"modules": [{"name": "CRM", "technical_name": "crm"}]
	}`)
	assert.NoError(t, err)
	assert.Equal(t, v1.StepStatusFailed, result.Modules[0].Status)
	assert.Contains(t, result.Modules[0].Error, "after install")
	assert.Equal(t, 1, result.FailedSteps)
	assert.Contains(t, conn.calls, "install_module:9")
}

func TestExecuteKickoffProgressPerItem(t *testing.T) {
	conn := &fakeConnector{}
	executor, deploymentRepo, _ := newTestExecutorWithRepo(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	_, err := executor.Execute(context.Background(), configuration, `{
		"modules": [{"name": "CRM", "technical_name": "crm"}],
		"custom_fields": [{"model": "res.partner", "field_name": "x_code", "field_type": "char", "label": "Code"}],
		"module_configs": [{"module": "crm", "key": "auto_assign", "value": "1"}]
	}`)
	assert.NoError(t, err)

	// 每完成一个条目推进一次：round(n/3*100)
	assert.Equal(t, []int{33, 67, 100}, deploymentRepo.progressValues())
}

func TestExecuteKickoffWorkflowPendingOnRemoteError(t *testing.T) {
	conn := &fakeConnector{
		setConfigParameterFn: func(ctx context.Context, key string, value interface{}) error {
			return errors.New("parameter store unavailable")
		},
	}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	result, err := executor.Execute(context.Background(), configuration, `{
		"workflows": [{"name": "Lead Flow", "model": "crm.lead"}],
		"dashboards": [{"name": "Overview", "view_type": "kanban", "components": [{"type": "chart"}]}]
	}`)
	assert.NoError(t, err)

	// 远端不可用时保持 pending，不伪装成功也不算失败
	assert.Equal(t, v1.StepStatusPending, result.Workflows[0].Status)
	assert.Equal(t, v1.StepStatusPending, result.Dashboards[0].Status)
	assert.Equal(t, 0, result.FailedSteps)
}

func TestExecuteView(t *testing.T) {
	var captured map[string]interface{}
	conn := &fakeConnector{
		createViewFn: func(ctx context.Context, values map[string]interface{}) (int64, error) {
			captured = values
			return 321, nil
		},
	}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{
		Name:        "Partner Form",
		ConfigType:  model.ConfigTypeView,
		TargetModel: "res.partner",
	}
	result, err := executor.Execute(context.Background(), configuration, "<form><field name='x_code'/></form>")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.TotalSteps)
	assert.Equal(t, 0, result.FailedSteps)
	assert.Equal(t, v1.StepStatusCreated, result.Views[0].Status)
	assert.Equal(t, int64(321), result.Views[0].RemoteID)
	assert.Equal(t, "res.partner", captured["model"])
	assert.Equal(t, "<form><field name='x_code'/></form>", captured["arch"])
}

func TestExecuteViewFailure(t *testing.T) {
	conn := &fakeConnector{
		createViewFn: func(ctx context.Context, values map[string]interface{}) (int64, error) {
			return 0, errors.New("invalid arch")
		},
	}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{Name: "Partner Form", ConfigType: model.ConfigTypeView}
	result, err := executor.Execute(context.Background(), configuration, "<form>")
	assert.NoError(t, err)
	assert.Equal(t, 1, result.FailedSteps)
	assert.Equal(t, v1.StepStatusFailed, result.Views[0].Status)
}

func TestExecuteRaw(t *testing.T) {
	conn := &fakeConnector{}
	executor, _ := newTestExecutor(conn)

	configuration := &model.Configuration{Name: "Partner ACL", ConfigType: model.ConfigTypeSecurity}
	result, err := executor.Execute(context.Background(), configuration, "acl rules")
	assert.NoError(t, err)
	assert.Equal(t, 0, result.FailedSteps)
	assert.Contains(t, conn.calls, "set_param:odoosphere.security.partner_acl")
}

func TestExecuteKickoffMalformedContent(t *testing.T) {
	executor, _ := newTestExecutor(&fakeConnector{})

	configuration := &model.Configuration{ConfigType: model.ConfigTypeKickoffTemplate}
	_, err := executor.Execute(context.Background(), configuration, `{"modules": [`)
	assert.Error(t, err)
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "sales_overview", sanitizeKey("Sales Overview"))
	assert.Equal(t, "lead_flow_v2", sanitizeKey(" Lead-Flow v2 "))
	assert.Equal(t, "crm", sanitizeKey("crm"))
}
