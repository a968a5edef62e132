package handler

import (
	"net/http"
	"strconv"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OdooInstanceHandler struct {
	*Handler
	instanceService service.OdooInstanceService
}

func NewOdooInstanceHandler(handler *Handler, instanceService service.OdooInstanceService) *OdooInstanceHandler {
	return &OdooInstanceHandler{
		Handler:         handler,
		instanceService: instanceService,
	}
}

// CreateInstance godoc
// @Summary 注册 Odoo 实例
// @Tags 实例模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateInstanceRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/instances [post]
func (h *OdooInstanceHandler) CreateInstance(ctx *gin.Context) {
	req := new(v1.CreateInstanceRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	id, err := h.instanceService.CreateInstance(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("instanceService.CreateInstance error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, gin.H{"id": id})
}

// UpdateInstance godoc
// @Summary 更新实例
// @Tags 实例模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "实例ID"
// @Param request body v1.UpdateInstanceRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/instances/{id} [put]
func (h *OdooInstanceHandler) UpdateInstance(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.UpdateInstanceRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.instanceService.UpdateInstance(ctx, id, req); err != nil {
		h.logger.WithContext(ctx).Error("instanceService.UpdateInstance error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// DeleteInstance godoc
// @Summary 删除实例
// @Tags 实例模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "实例ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/instances/{id} [delete]
func (h *OdooInstanceHandler) DeleteInstance(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.instanceService.DeleteInstance(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("instanceService.DeleteInstance error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// GetInstance godoc
// @Summary 查询实例详情
// @Tags 实例模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "实例ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/instances/{id} [get]
func (h *OdooInstanceHandler) GetInstance(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	detail, err := h.instanceService.GetInstance(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).Error("instanceService.GetInstance error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, detail)
}

// ListInstances godoc
// @Summary 查询实例列表
// @Tags 实例模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request query v1.ListInstanceRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/instances [get]
func (h *OdooInstanceHandler) ListInstances(ctx *gin.Context) {
	req := new(v1.ListInstanceRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.instanceService.ListInstances(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("instanceService.ListInstances error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// CheckHealth godoc
// @Summary 实例健康检查
// @Tags 实例模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "实例ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/instances/{id}/health [post]
func (h *OdooInstanceHandler) CheckHealth(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	health, err := h.instanceService.CheckHealth(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).Error("instanceService.CheckHealth error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, health)
}
