package model

import (
	"encoding/json"
	"fmt"
)

// TemplateStructure kickoff 模板的声明式载荷
// 附加到部署后即为冻结副本，执行期间不可变
type TemplateStructure struct {
	Modules       []TemplateModule       `json:"modules"`
	CustomFields  []TemplateCustomField  `json:"custom_fields"`
	Workflows     []TemplateWorkflow     `json:"workflows"`
	Dashboards    []TemplateDashboard    `json:"dashboards"`
	ModuleConfigs []TemplateModuleConfig `json:"module_configs"`
}

// TemplateModule 需要安装的模块引用
type TemplateModule struct {
	Name          string `json:"name"`
	TechnicalName string `json:"technical_name"`
}

// TemplateCustomField 自定义字段定义
type TemplateCustomField struct {
	Model     string                 `json:"model"`
	FieldName string                 `json:"field_name"`
	FieldType string                 `json:"field_type"`
	Label     string                 `json:"label"`
	Required  bool                   `json:"required"`
	Options   map[string]interface{} `json:"options,omitempty"`
}

// TemplateWorkflow 工作流定义（状态 + 迁移）
type TemplateWorkflow struct {
	Name        string               `json:"name"`
	Model       string               `json:"model"`
	States      []WorkflowState      `json:"states"`
	Transitions []WorkflowTransition `json:"transitions"`
}

type WorkflowState struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type WorkflowTransition struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Condition string `json:"condition,omitempty"`
}

// TemplateDashboard 仪表盘定义
type TemplateDashboard struct {
	Name       string               `json:"name"`
	ViewType   string               `json:"view_type"`
	Components []DashboardComponent `json:"components"`
}

type DashboardComponent struct {
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// TemplateModuleConfig 模块级 key/value 设置
type TemplateModuleConfig struct {
	Module string `json:"module"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ParseTemplateStructure 解析配置内容中的模板结构 JSON
func ParseTemplateStructure(content string) (*TemplateStructure, error) {
	var structure TemplateStructure
	if err := json.Unmarshal([]byte(content), &structure); err != nil {
		return nil, fmt.Errorf("parse template structure: %w", err)
	}
	return &structure, nil
}

// TotalSteps 五个分区条目总数，用于进度计算
func (t *TemplateStructure) TotalSteps() int {
	return len(t.Modules) + len(t.CustomFields) + len(t.Workflows) + len(t.Dashboards) + len(t.ModuleConfigs)
}

// MarshalWorkflow 序列化为下发到远端配置参数的 JSON
func MarshalWorkflow(workflow TemplateWorkflow) (string, error) {
	data, err := json.Marshal(workflow)
	if err != nil {
		return "", fmt.Errorf("marshal workflow: %w", err)
	}
	return string(data), nil
}

// MarshalDashboard 序列化为下发到远端配置参数的 JSON
func MarshalDashboard(dashboard TemplateDashboard) (string, error) {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return "", fmt.Errorf("marshal dashboard: %w", err)
	}
	return string(data), nil
}
