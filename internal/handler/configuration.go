package handler

import (
	"net/http"
	"strconv"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConfigurationHandler struct {
	*Handler
	configService     service.ConfigurationService
	versionService    service.VersionService
	deploymentService service.DeploymentService
}

func NewConfigurationHandler(
	handler *Handler,
	configService service.ConfigurationService,
	versionService service.VersionService,
	deploymentService service.DeploymentService,
) *ConfigurationHandler {
	return &ConfigurationHandler{
		Handler:           handler,
		configService:     configService,
		versionService:    versionService,
		deploymentService: deploymentService,
	}
}

// CreateConfiguration godoc
// @Summary 创建配置
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateConfigurationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations [post]
func (h *ConfigurationHandler) CreateConfiguration(ctx *gin.Context) {
	req := new(v1.CreateConfigurationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	id, err := h.configService.CreateConfiguration(ctx, req, GetUserIdFromCtx(ctx))
	if err != nil {
		h.logger.WithContext(ctx).Error("configService.CreateConfiguration error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, gin.H{"id": id})
}

// UpdateConfiguration godoc
// @Summary 更新配置
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Param request body v1.UpdateConfigurationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id} [put]
func (h *ConfigurationHandler) UpdateConfiguration(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.UpdateConfigurationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.configService.UpdateConfiguration(ctx, id, req, GetUserIdFromCtx(ctx)); err != nil {
		h.logger.WithContext(ctx).Error("configService.UpdateConfiguration error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// DeleteConfiguration godoc
// @Summary 删除配置（级联删除版本与部署记录）
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id} [delete]
func (h *ConfigurationHandler) DeleteConfiguration(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.configService.DeleteConfiguration(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("configService.DeleteConfiguration error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// GetConfiguration godoc
// @Summary 查询配置详情
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id} [get]
func (h *ConfigurationHandler) GetConfiguration(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	detail, err := h.configService.GetConfiguration(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).Error("configService.GetConfiguration error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, detail)
}

// ListConfigurations godoc
// @Summary 查询配置列表
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request query v1.ListConfigurationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations [get]
func (h *ConfigurationHandler) ListConfigurations(ctx *gin.Context) {
	req := new(v1.ListConfigurationRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.configService.ListConfigurations(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("configService.ListConfigurations error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// SubmitForReview godoc
// @Summary 提交评审
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id}/submit [post]
func (h *ConfigurationHandler) SubmitForReview(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.configService.SubmitForReview(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("configService.SubmitForReview error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// ReviewConfiguration godoc
// @Summary 评审配置
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Param request body v1.ReviewConfigurationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id}/review [post]
func (h *ConfigurationHandler) ReviewConfiguration(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.ReviewConfigurationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.configService.ReviewConfiguration(ctx, id, req); err != nil {
		h.logger.WithContext(ctx).Error("configService.ReviewConfiguration error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// ValidateConfiguration godoc
// @Summary 针对目标实例校验配置
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Param request body v1.ValidateConfigurationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id}/validate [post]
func (h *ConfigurationHandler) ValidateConfiguration(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.ValidateConfigurationRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	result, err := h.configService.ValidateConfiguration(ctx, id, req.InstanceID)
	if err != nil {
		h.logger.WithContext(ctx).Error("configService.ValidateConfiguration error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, result)
}

// ListVersions godoc
// @Summary 查询配置版本历史
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id}/versions [get]
func (h *ConfigurationHandler) ListVersions(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	versions, err := h.versionService.ListVersions(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).Error("versionService.ListVersions error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, v1.ListConfigurationVersionsResponseData{
		Total: int64(len(versions)),
		List:  versions,
	})
}

// RedeployVersion godoc
// @Summary 按历史版本重新部署（配置级回滚）
// @Tags 配置模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "配置ID"
// @Param request body v1.RedeployVersionRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/configurations/{id}/redeploy [post]
func (h *ConfigurationHandler) RedeployVersion(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.RedeployVersionRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.deploymentService.RedeployVersion(ctx, id, req, GetUserIdFromCtx(ctx))
	if err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.RedeployVersion error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}
