package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleKickoffContent = `{
  "modules": [
    {"name": "CRM", "technical_name": "crm"},
    {"name": "Sales", "technical_name": "sale_management"}
  ],
  "custom_fields": [
    {"model": "res.partner", "field_name": "x_industry_code", "field_type": "char", "label": "Industry Code", "required": true}
  ],
  "workflows": [
    {
      "name": "Lead Qualification",
      "model": "crm.lead",
      "states": [{"name": "new", "label": "New"}, {"name": "qualified", "label": "Qualified"}],
      "transitions": [{"from": "new", "to": "qualified"}]
    }
  ],
  "dashboards": [
    {"name": "Sales Overview", "view_type": "kanban", "components": [{"type": "chart", "title": "Pipeline"}]}
  ],
  "module_configs": [
    {"module": "crm", "key": "lead_enrich_auto", "value": "auto"}
  ]
}`

func TestParseTemplateStructure(t *testing.T) {
	structure, err := ParseTemplateStructure(sampleKickoffContent)
	assert.NoError(t, err)
	assert.Len(t, structure.Modules, 2)
	assert.Equal(t, "sale_management", structure.Modules[1].TechnicalName)
	assert.Len(t, structure.CustomFields, 1)
	assert.True(t, structure.CustomFields[0].Required)
	assert.Len(t, structure.Workflows, 1)
	assert.Equal(t, "qualified", structure.Workflows[0].Transitions[0].To)
	assert.Len(t, structure.Dashboards, 1)
	assert.Len(t, structure.ModuleConfigs, 1)
}

func TestParseTemplateStructureInvalidJSON(t *testing.T) {
	_, err := ParseTemplateStructure(`{"modules": [`)
	assert.Error(t, err)
}

func TestTotalSteps(t *testing.T) {
	structure, err := ParseTemplateStructure(sampleKickoffContent)
	assert.NoError(t, err)
	assert.Equal(t, 6, structure.TotalSteps())

	empty := &TemplateStructure{}
	assert.Equal(t, 0, empty.TotalSteps())
}

func TestMarshalWorkflow(t *testing.T) {
	payload, err := MarshalWorkflow(TemplateWorkflow{
		Name:  "Lead Qualification",
		Model: "crm.lead",
		States: []WorkflowState{
			{Name: "new", Label: "New"},
		},
	})
	assert.NoError(t, err)
	assert.Contains(t, payload, `"model":"crm.lead"`)
}

func TestMarshalDashboard(t *testing.T) {
	payload, err := MarshalDashboard(TemplateDashboard{
		Name:     "Sales Overview",
		ViewType: "kanban",
	})
	assert.NoError(t, err)
	assert.Contains(t, payload, `"view_type":"kanban"`)
}
