package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
)

// deploymentExecutor 把冻结的配置内容落到远端实例
// 条目级失败只记录在结果里，绝不中断剩余条目
type deploymentExecutor struct {
	conn    ErpConnector
	tracker *progressTracker
}

func newDeploymentExecutor(conn ErpConnector, tracker *progressTracker) *deploymentExecutor {
	return &deploymentExecutor{conn: conn, tracker: tracker}
}

// Execute 按配置类型分发
func (e *deploymentExecutor) Execute(ctx context.Context, configuration *model.Configuration, frozenContent string) (*v1.DeploymentResult, error) {
	switch configuration.ConfigType {
	case model.ConfigTypeKickoffTemplate:
		return e.executeKickoff(ctx, frozenContent)
	case model.ConfigTypeView:
		return e.executeView(ctx, configuration, frozenContent)
	default:
		// 其余类型以配置参数方式落地，远端插件读取后按需应用
		return e.executeRaw(ctx, configuration, frozenContent)
	}
}

func (e *deploymentExecutor) executeKickoff(ctx context.Context, frozenContent string) (*v1.DeploymentResult, error) {
	structure, err := model.ParseTemplateStructure(frozenContent)
	if err != nil {
		return nil, err
	}

	result := &v1.DeploymentResult{TotalSteps: structure.TotalSteps()}

	// 每个条目完成都推进一次进度：round(completed/total*100)
	completed := 0
	advance := func(section string) {
		completed++
		e.tracker.Step(ctx, itemProgress(completed, result.TotalSteps),
			fmt.Sprintf("%s (%d/%d)", section, completed, result.TotalSteps))
	}

	for _, mod := range structure.Modules {
		result.Modules = append(result.Modules, e.installModule(ctx, mod))
		advance("installing modules")
	}
	for _, field := range structure.CustomFields {
		result.CustomFields = append(result.CustomFields, e.createCustomField(ctx, field))
		advance("creating custom fields")
	}
	for _, workflow := range structure.Workflows {
		result.Workflows = append(result.Workflows, e.registerWorkflow(ctx, workflow))
		advance("registering workflows")
	}
	for _, dashboard := range structure.Dashboards {
		result.Dashboards = append(result.Dashboards, e.registerDashboard(ctx, dashboard))
		advance("registering dashboards")
	}
	for _, cfg := range structure.ModuleConfigs {
		result.ModuleConfigs = append(result.ModuleConfigs, e.applyModuleConfig(ctx, cfg))
		advance("applying module settings")
	}

	result.FailedSteps = countFailedSteps(result)
	return result, nil
}

func itemProgress(completed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func (e *deploymentExecutor) installModule(ctx context.Context, mod model.TemplateModule) v1.ModuleStepResult {
	step := v1.ModuleStepResult{Name: mod.Name, TechnicalName: mod.TechnicalName}

	record, err := e.conn.FindModule(ctx, mod.TechnicalName)
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		e.tracker.Errorf(ctx, "module %s: lookup failed: %v", mod.TechnicalName, err)
		return step
	}
	if record == nil {
		step.Status = v1.StepStatusNotFound
		e.tracker.Warningf(ctx, "module %s not available on instance", mod.TechnicalName)
		return step
	}
	if state, _ := record["state"].(string); state == "installed" {
		step.Status = v1.StepStatusInstalled
		e.tracker.Infof(ctx, "module %s already installed", mod.TechnicalName)
		return step
	}

	moduleID := asInt64(record["id"])
	if err := e.conn.InstallModule(ctx, moduleID); err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		e.tracker.Errorf(ctx, "module %s: install failed: %v", mod.TechnicalName, err)
		return step
	}

	// 安装调用返回成功不代表装上了，回读状态确认
	record, err = e.conn.FindModule(ctx, mod.TechnicalName)
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		e.tracker.Errorf(ctx, "module %s: state check failed: %v", mod.TechnicalName, err)
		return step
	}
	if state, _ := record["state"].(string); state != "installed" {
		step.Status = v1.StepStatusFailed
		step.Error = fmt.Sprintf("module state is %q after install", state)
		e.tracker.Errorf(ctx, "module %s still not installed (state %q)", mod.TechnicalName, state)
		return step
	}
	step.Status = v1.StepStatusInstalled
	e.tracker.Infof(ctx, "module %s installed", mod.TechnicalName)
	return step
}

func (e *deploymentExecutor) createCustomField(ctx context.Context, field model.TemplateCustomField) v1.FieldStepResult {
	step := v1.FieldStepResult{Model: field.Model, FieldName: field.FieldName}

	existing, err := e.conn.FindModelField(ctx, field.Model, field.FieldName)
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		e.tracker.Errorf(ctx, "field %s.%s: lookup failed: %v", field.Model, field.FieldName, err)
		return step
	}
	if existing != nil {
		step.Status = v1.StepStatusExists
		step.RemoteID = asInt64(existing["id"])
		e.tracker.Infof(ctx, "field %s.%s already exists", field.Model, field.FieldName)
		return step
	}

	values := map[string]interface{}{
		"model":             field.Model,
		"name":              field.FieldName,
		"field_description": field.Label,
		"ttype":             field.FieldType,
		"required":          field.Required,
		"state":             "manual",
	}
	for k, v := range field.Options {
		values[k] = v
	}
	remoteID, err := e.conn.CreateModelField(ctx, values)
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		e.tracker.Errorf(ctx, "field %s.%s: create failed: %v", field.Model, field.FieldName, err)
		return step
	}
	step.Status = v1.StepStatusCreated
	step.RemoteID = remoteID
	e.tracker.Infof(ctx, "field %s.%s created", field.Model, field.FieldName)
	return step
}

// registerWorkflow 工作流落为配置参数，由实例侧的流程引擎读取
// 远端无引擎时保持 pending，绝不伪装成功
func (e *deploymentExecutor) registerWorkflow(ctx context.Context, workflow model.TemplateWorkflow) v1.StepResult {
	step := v1.StepResult{Name: workflow.Name}
	key := fmt.Sprintf("odoosphere.workflow.%s", sanitizeKey(workflow.Name))
	payload, err := model.MarshalWorkflow(workflow)
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		return step
	}
	if err := e.conn.SetConfigParameter(ctx, key, payload); err != nil {
		step.Status = v1.StepStatusPending
		step.Error = err.Error()
		e.tracker.Warningf(ctx, "workflow %s left pending: %v", workflow.Name, err)
		return step
	}
	step.Status = v1.StepStatusApplied
	e.tracker.Infof(ctx, "workflow %s registered", workflow.Name)
	return step
}

func (e *deploymentExecutor) registerDashboard(ctx context.Context, dashboard model.TemplateDashboard) v1.StepResult {
	step := v1.StepResult{Name: dashboard.Name}
	key := fmt.Sprintf("odoosphere.dashboard.%s", sanitizeKey(dashboard.Name))
	payload, err := model.MarshalDashboard(dashboard)
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		return step
	}
	if err := e.conn.SetConfigParameter(ctx, key, payload); err != nil {
		step.Status = v1.StepStatusPending
		step.Error = err.Error()
		e.tracker.Warningf(ctx, "dashboard %s left pending: %v", dashboard.Name, err)
		return step
	}
	step.Status = v1.StepStatusApplied
	e.tracker.Infof(ctx, "dashboard %s registered", dashboard.Name)
	return step
}

func (e *deploymentExecutor) applyModuleConfig(ctx context.Context, cfg model.TemplateModuleConfig) v1.StepResult {
	key := fmt.Sprintf("%s.%s", cfg.Module, cfg.Key)
	step := v1.StepResult{Name: key}
	if err := e.conn.SetConfigParameter(ctx, key, cfg.Value); err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		e.tracker.Errorf(ctx, "config %s: %v", key, err)
		return step
	}
	step.Status = v1.StepStatusApplied
	e.tracker.Infof(ctx, "config %s applied", key)
	return step
}

func (e *deploymentExecutor) executeView(ctx context.Context, configuration *model.Configuration, frozenContent string) (*v1.DeploymentResult, error) {
	result := &v1.DeploymentResult{TotalSteps: 1}
	e.tracker.Step(ctx, 60, fmt.Sprintf("creating view %s", configuration.Name))

	step := v1.ViewStepResult{Name: configuration.Name}
	remoteID, err := e.conn.CreateView(ctx, map[string]interface{}{
		"name":  configuration.Name,
		"model": configuration.TargetModel,
		"type":  "form",
		"arch":  frozenContent,
	})
	if err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		result.FailedSteps = 1
		e.tracker.Errorf(ctx, "view %s: create failed: %v", configuration.Name, err)
	} else {
		step.Status = v1.StepStatusCreated
		step.RemoteID = remoteID
		e.tracker.Infof(ctx, "view %s created", configuration.Name)
	}
	result.Views = append(result.Views, step)
	return result, nil
}

// executeRaw 非结构化配置以单个配置参数落地
func (e *deploymentExecutor) executeRaw(ctx context.Context, configuration *model.Configuration, frozenContent string) (*v1.DeploymentResult, error) {
	result := &v1.DeploymentResult{TotalSteps: 1}
	key := fmt.Sprintf("odoosphere.%s.%s", configuration.ConfigType, sanitizeKey(configuration.Name))
	e.tracker.Step(ctx, 60, fmt.Sprintf("applying %s configuration %s", configuration.ConfigType, configuration.Name))

	step := v1.StepResult{Name: configuration.Name}
	if err := e.conn.SetConfigParameter(ctx, key, frozenContent); err != nil {
		step.Status = v1.StepStatusFailed
		step.Error = err.Error()
		result.FailedSteps = 1
		e.tracker.Errorf(ctx, "configuration %s: %v", configuration.Name, err)
	} else {
		step.Status = v1.StepStatusApplied
		e.tracker.Infof(ctx, "configuration %s applied", configuration.Name)
	}
	result.ModuleConfigs = append(result.ModuleConfigs, step)
	return result, nil
}

func countFailedSteps(result *v1.DeploymentResult) int {
	n := 0
	// not_found 是警告不是失败：模块在远端不存在不影响整体结论
	for _, s := range result.Modules {
		if s.Status == v1.StepStatusFailed {
			n++
		}
	}
	for _, s := range result.CustomFields {
		if s.Status == v1.StepStatusFailed {
			n++
		}
	}
	for _, group := range [][]v1.StepResult{result.Workflows, result.Dashboards, result.ModuleConfigs} {
		for _, s := range group {
			if s.Status == v1.StepStatusFailed {
				n++
			}
		}
	}
	for _, s := range result.Views {
		if s.Status == v1.StepStatusFailed {
			n++
		}
	}
	return n
}

func sanitizeKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
