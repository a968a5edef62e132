package service

import (
	"context"
	"testing"

	"odoosphere/internal/model"

	"github.com/stretchr/testify/assert"
)

func newTestValidationService(instanceRepo *fakeInstanceRepo, configRepo *fakeConfigurationRepo) ValidationService {
	return NewValidationService(newTestService(), instanceRepo, configRepo, NewCodeValidator(), newTestLogger())
}

func enabledInstance(id int64) *model.OdooInstance {
	return &model.OdooInstance{Id: id, InstanceName: "acme-prod", IsEnabled: 1}
}

func TestValidateKickoffTemplateOK(t *testing.T) {
	svc := newTestValidationService(newFakeInstanceRepo(enabledInstance(1)), newFakeConfigurationRepo())

	configuration := &model.Configuration{
		Id:         10,
		Name:       "CRM Kickoff",
		ConfigType: model.ConfigTypeKickoffTemplate,
		Content: `{
			"modules": [{"name": "CRM", "technical_name": "crm"}],
			"custom_fields": [{"model": "res.partner", "field_name": "x_code", "field_type": "char", "label": "Code"}],
			"workflows": [{"name": "wf", "model": "crm.lead",
				"states": [{"name": "new"}, {"name": "won"}],
				"transitions": [{"from": "new", "to": "won"}]}],
			"dashboards": [{"name": "Overview", "view_type": "kanban", "components": [{"type": "chart", "title": "Pipeline"}]}],
			"module_configs": [{"module": "crm", "key": "k", "value": "v"}]
		}`,
	}
	result, err := svc.Validate(context.Background(), configuration, 1)
	assert.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidateStructureErrors(t *testing.T) {
	svc := newTestValidationService(newFakeInstanceRepo(enabledInstance(1)), newFakeConfigurationRepo())

	configuration := &model.Configuration{
		Id:         10,
		ConfigType: model.ConfigTypeKickoffTemplate,
		Content: `{
			"modules": [{"name": "", "technical_name": ""}],
			"custom_fields": [{"model": "", "field_name": "industry", "field_type": "", "label": ""}],
			"dashboards": [{"name": "Broken", "view_type": "wheel", "components": []}]
		}`,
	}
	result, err := svc.Validate(context.Background(), configuration, 1)
	assert.NoError(t, err)
	assert.False(t, result.IsValid)

	codes := map[string]bool{}
	for _, finding := range result.Errors {
		codes[finding.Code] = true
	}
	assert.True(t, codes["module.name_required"])
	assert.True(t, codes["module.technical_name_required"])
	assert.True(t, codes["field.model_required"])
	assert.True(t, codes["field.type_required"])
	assert.True(t, codes["field.label_required"])
	assert.True(t, codes["dashboard.unknown_view_type"])
	assert.True(t, codes["dashboard.no_components"])

	// x_ 前缀缺失只降级为告警
	warned := false
	for _, finding := range result.Warnings {
		if finding.Code == "field.naming_convention" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestValidateWorkflowUnknownState(t *testing.T) {
	svc := newTestValidationService(newFakeInstanceRepo(enabledInstance(1)), newFakeConfigurationRepo())

	configuration := &model.Configuration{
		Id:         10,
		ConfigType: model.ConfigTypeKickoffTemplate,
		Content: `{
			"workflows": [{"name": "wf", "model": "crm.lead",
				"states": [{"name": "new"}],
				"transitions": [{"from": "new", "to": "qualified"}]}]
		}`,
	}
	result, err := svc.Validate(context.Background(), configuration, 1)
	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, "workflow.unknown_state", result.Errors[0].Code)
	assert.Contains(t, result.Errors[0].Message, "qualified")
}

func TestValidateMalformedTemplate(t *testing.T) {
	svc := newTestValidationService(newFakeInstanceRepo(enabledInstance(1)), newFakeConfigurationRepo())

	configuration := &model.Configuration{
		Id:         10,
		ConfigType: model.ConfigTypeKickoffTemplate,
		Content:    `{"modules": [`,
	}
	result, err := svc.Validate(context.Background(), configuration, 1)
	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "structure.parse", result.Errors[0].Code)
}

func TestValidateInstanceGate(t *testing.T) {
	disabled := enabledInstance(2)
	disabled.IsEnabled = 0
	svc := newTestValidationService(newFakeInstanceRepo(disabled), newFakeConfigurationRepo())

	configuration := &model.Configuration{Id: 10, ConfigType: model.ConfigTypeModel, Content: "class Partner: pass"}

	// 实例不存在
	result, err := svc.Validate(context.Background(), configuration, 99)
	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "dependency.instance_not_found", result.Errors[0].Code)

	// 实例被禁用
	result, err = svc.Validate(context.Background(), configuration, 2)
	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "dependency.instance_disabled", result.Errors[0].Code)
}

func TestValidateConflictWarnings(t *testing.T) {
	configRepo := newFakeConfigurationRepo()
	configRepo.deployed = []*model.Configuration{
		{Id: 7, Name: "Partner Form", FilePath: "views/partner_form.xml", Status: model.ConfigStatusDeployed},
	}
	svc := newTestValidationService(newFakeInstanceRepo(enabledInstance(1)), configRepo)

	configuration := &model.Configuration{
		Id:         10,
		Name:       "Partner Form",
		ConfigType: model.ConfigTypeView,
		FilePath:   "views/partner_form.xml",
		Content:    "<form><field name='name'/></form>",
	}
	result, err := svc.Validate(context.Background(), configuration, 1)
	assert.NoError(t, err)
	// 冲突是告警不是错误，不阻断部署
	assert.True(t, result.IsValid)

	codes := map[string]bool{}
	for _, finding := range result.Warnings {
		codes[finding.Code] = true
	}
	assert.True(t, codes["conflict.file_path"])
	assert.True(t, codes["conflict.name"])
}

func TestCodeValidatorUnbalancedDelimiters(t *testing.T) {
	validator := NewCodeValidator()

	errs, _ := validator.Check("def compute(self:", model.ConfigTypeModel)
	assert.NotEmpty(t, errs)

	errs, _ = validator.Check("def compute(self))", model.ConfigTypeModel)
	assert.NotEmpty(t, errs)

	errs, warnings := validator.Check("<form><field name='x'/></form>", model.ConfigTypeView)
	assert.Empty(t, errs)
	assert.Empty(t, warnings)

	// 视图内容里没有任何标签时给出告警
	errs, warnings = validator.Check("just text", model.ConfigTypeView)
	assert.Empty(t, errs)
	assert.NotEmpty(t, warnings)
}
