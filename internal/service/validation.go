package service

import (
	"context"
	"fmt"
	"strings"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/repository"
	"odoosphere/pkg/log"

	"go.uber.org/zap"
)

// 仪表盘可识别的视图类型
var knownDashboardViewTypes = map[string]bool{
	"kanban":   true,
	"graph":    true,
	"pivot":    true,
	"list":     true,
	"kpi":      true,
	"gantt":    true,
	"calendar": true,
}

type ValidationService interface {
	// Validate 在任何远程调用之前检查配置的结构、语法、依赖与冲突
	// 存在 error 级发现即不可部署；发现从不被自动修复
	Validate(ctx context.Context, configuration *model.Configuration, instanceID int64) (*v1.ValidationResultData, error)
}

// CodeValidator 代码语法校验委托（仅在配置附带可部署代码时调用）
type CodeValidator interface {
	Check(content, configType string) (errors []string, warnings []string)
}

func NewValidationService(
	service *Service,
	instanceRepo repository.OdooInstanceRepository,
	configRepo repository.ConfigurationRepository,
	codeValidator CodeValidator,
	logger *log.Logger,
) ValidationService {
	return &validationService{
		instanceRepo:  instanceRepo,
		configRepo:    configRepo,
		codeValidator: codeValidator,
		Service:       service,
		logger:        logger,
	}
}

type validationService struct {
	instanceRepo  repository.OdooInstanceRepository
	configRepo    repository.ConfigurationRepository
	codeValidator CodeValidator
	*Service
	logger *log.Logger
}

func (s *validationService) Validate(ctx context.Context, configuration *model.Configuration, instanceID int64) (*v1.ValidationResultData, error) {
	result := &v1.ValidationResultData{
		Errors:   []v1.ValidationFinding{},
		Warnings: []v1.ValidationFinding{},
	}

	// 1. 结构检查
	if configuration.ConfigType == model.ConfigTypeKickoffTemplate {
		s.checkStructure(configuration, result)
	} else {
		// 2. 语法检查（仅代码类配置）
		s.checkSyntax(configuration, result)
	}

	// 3. 依赖检查：目标实例必须存在且可达
	if err := s.checkDependency(ctx, instanceID, result); err != nil {
		return nil, err
	}

	// 4. 冲突检查：与同类型同公司的已部署配置比对路径/名称
	if err := s.checkConflict(ctx, configuration, result); err != nil {
		return nil, err
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func (s *validationService) checkStructure(configuration *model.Configuration, result *v1.ValidationResultData) {
	structure, err := model.ParseTemplateStructure(configuration.Content)
	if err != nil {
		addError(result, "structure.parse", err.Error(), "")
		return
	}

	// 模块：名称与技术标识缺一不可
	for i, mod := range structure.Modules {
		path := fmt.Sprintf("modules[%d]", i)
		if mod.Name == "" {
			addError(result, "module.name_required", "module name is required", path)
		}
		if mod.TechnicalName == "" {
			addError(result, "module.technical_name_required", "module technical name is required", path)
		}
	}

	// 自定义字段：模型/字段名/类型/标签必填，x_ 前缀仅为告警
	for i, field := range structure.CustomFields {
		path := fmt.Sprintf("custom_fields[%d]", i)
		if field.Model == "" {
			addError(result, "field.model_required", "custom field model is required", path)
		}
		if field.FieldName == "" {
			addError(result, "field.name_required", "custom field name is required", path)
		}
		if field.FieldType == "" {
			addError(result, "field.type_required", "custom field type is required", path)
		}
		if field.Label == "" {
			addError(result, "field.label_required", "custom field label is required", path)
		}
		if field.FieldName != "" && !strings.HasPrefix(field.FieldName, "x_") {
			addWarning(result, "field.naming_convention",
				fmt.Sprintf("custom field %q should use the x_ prefix", field.FieldName), path)
		}
	}

	// 工作流：迁移引用的状态必须在该工作流内声明
	for i, workflow := range structure.Workflows {
		path := fmt.Sprintf("workflows[%d]", i)
		states := make(map[string]bool, len(workflow.States))
		for _, state := range workflow.States {
			states[state.Name] = true
		}
		for j, transition := range workflow.Transitions {
			tPath := fmt.Sprintf("%s.transitions[%d]", path, j)
			if !states[transition.From] {
				addError(result, "workflow.unknown_state",
					fmt.Sprintf("transition references unknown state %q", transition.From), tPath)
			}
			if !states[transition.To] {
				addError(result, "workflow.unknown_state",
					fmt.Sprintf("transition references unknown state %q", transition.To), tPath)
			}
		}
	}

	// 仪表盘：视图类型可识别且至少包含一个带类型的组件
	for i, dashboard := range structure.Dashboards {
		path := fmt.Sprintf("dashboards[%d]", i)
		if !knownDashboardViewTypes[dashboard.ViewType] {
			addError(result, "dashboard.unknown_view_type",
				fmt.Sprintf("unknown dashboard view type %q", dashboard.ViewType), path)
		}
		if len(dashboard.Components) == 0 {
			addError(result, "dashboard.no_components", "dashboard has no components", path)
		}
		for j, component := range dashboard.Components {
			if component.Type == "" {
				addError(result, "dashboard.component_type_required", "dashboard component type is required",
					fmt.Sprintf("%s.components[%d]", path, j))
			}
		}
	}
}

func (s *validationService) checkSyntax(configuration *model.Configuration, result *v1.ValidationResultData) {
	if configuration.Content == "" {
		return
	}
	errs, warnings := s.codeValidator.Check(configuration.Content, configuration.ConfigType)
	for _, msg := range errs {
		addError(result, "syntax.error", msg, "")
	}
	for _, msg := range warnings {
		addWarning(result, "syntax.warning", msg, "")
	}
}

func (s *validationService) checkDependency(ctx context.Context, instanceID int64, result *v1.ValidationResultData) error {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get instance", zap.Error(err), zap.Int64("instance_id", instanceID))
		return v1.ErrInternalServerError
	}
	if instance == nil {
		addError(result, "dependency.instance_not_found",
			fmt.Sprintf("target instance %d does not exist", instanceID), "")
		return nil
	}
	if instance.IsEnabled == 0 {
		addError(result, "dependency.instance_disabled",
			fmt.Sprintf("target instance %d is disabled", instanceID), "")
	}
	return nil
}

func (s *validationService) checkConflict(ctx context.Context, configuration *model.Configuration, result *v1.ValidationResultData) error {
	deployed, err := s.configRepo.ListDeployedByTypeAndCompany(ctx, configuration.ConfigType, configuration.CompanyID)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list deployed configurations", zap.Error(err))
		return v1.ErrInternalServerError
	}

	for _, other := range deployed {
		if other.Id == configuration.Id {
			continue
		}
		// 路径冲突需要人工裁决，按告警上报
		if configuration.FilePath != "" && other.FilePath == configuration.FilePath {
			addWarning(result, "conflict.file_path",
				fmt.Sprintf("file path %q is already claimed by deployed configuration %q", configuration.FilePath, other.Name), "")
		}
		if other.Name == configuration.Name {
			addWarning(result, "conflict.name",
				fmt.Sprintf("a deployed configuration with name %q already exists", configuration.Name), "")
		}
	}
	return nil
}

func addError(result *v1.ValidationResultData, code, message, path string) {
	result.Errors = append(result.Errors, v1.ValidationFinding{
		Severity: "error",
		Code:     code,
		Message:  message,
		Path:     path,
	})
}

func addWarning(result *v1.ValidationResultData, code, message, path string) {
	result.Warnings = append(result.Warnings, v1.ValidationFinding{
		Severity: "warning",
		Code:     code,
		Message:  message,
		Path:     path,
	})
}

// NewCodeValidator 轻量级代码校验：括号配平与明显的截断
// 深度语法分析由生成侧负责，这里只拦截明显损坏的内容
func NewCodeValidator() CodeValidator {
	return &basicCodeValidator{}
}

type basicCodeValidator struct{}

func (v *basicCodeValidator) Check(content, configType string) ([]string, []string) {
	var errs []string
	var warnings []string

	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}
	var stack []rune
	for _, ch := range content {
		switch ch {
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[ch] {
				errs = append(errs, fmt.Sprintf("unbalanced delimiter %q", string(ch)))
				return errs, warnings
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		errs = append(errs, "content ends with unclosed delimiters")
	}

	if configType == model.ConfigTypeView && !strings.Contains(content, "<") {
		warnings = append(warnings, "view configuration does not look like XML")
	}
	return errs, warnings
}
