package handler

import (
	"net/http"
	"strconv"
	"time"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type DeploymentHandler struct {
	*Handler
	deploymentService service.DeploymentService
	backupService     service.BackupService
	monitoringService service.MonitoringService
}

func NewDeploymentHandler(
	handler *Handler,
	deploymentService service.DeploymentService,
	backupService service.BackupService,
	monitoringService service.MonitoringService,
) *DeploymentHandler {
	return &DeploymentHandler{
		Handler:           handler,
		deploymentService: deploymentService,
		backupService:     backupService,
		monitoringService: monitoringService,
	}
}

// CreateDeployment godoc
// @Summary 发起部署
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateDeploymentRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments [post]
func (h *DeploymentHandler) CreateDeployment(ctx *gin.Context) {
	req := new(v1.CreateDeploymentRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.deploymentService.Deploy(ctx, req, GetUserIdFromCtx(ctx))
	if err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.Deploy error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// GetDeployment godoc
// @Summary 查询部署状态
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id} [get]
func (h *DeploymentHandler) GetDeployment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	detail, err := h.deploymentService.GetDeployment(ctx, id)
	if err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.GetDeployment error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, detail)
}

// ListDeployments godoc
// @Summary 查询部署列表
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request query v1.ListDeploymentRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments [get]
func (h *DeploymentHandler) ListDeployments(ctx *gin.Context) {
	req := new(v1.ListDeploymentRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.deploymentService.ListDeployments(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.ListDeployments error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// GetLogs godoc
// @Summary 查询部署日志
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Param request query v1.ListDeploymentLogsRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id}/logs [get]
func (h *DeploymentHandler) GetLogs(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.ListDeploymentLogsRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.deploymentService.GetLogs(ctx, id, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("deploymentService.GetLogs error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// Rollback godoc
// @Summary 实例级回滚：恢复部署前备份
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id}/rollback [post]
func (h *DeploymentHandler) Rollback(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.backupService.RollbackDeployment(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("backupService.RollbackDeployment error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}

// GetMetrics godoc
// @Summary 部署指标聚合
// @Tags 部署模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request query v1.DeploymentMetricsRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/metrics [get]
func (h *DeploymentHandler) GetMetrics(ctx *gin.Context) {
	req := new(v1.DeploymentMetricsRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.monitoringService.GetMetrics(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("monitoringService.GetMetrics error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// WatchDeployment godoc
// @Summary WebSocket 订阅部署进度，终态后关闭
// @Tags 部署模块
// @Security Bearer
// @Param id path int true "部署ID"
// @Router /api/v1/deployments/{id}/watch [get]
func (h *DeploymentHandler) WatchDeployment(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	clientConn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.WithContext(ctx).Error("WatchDeployment: failed to upgrade websocket", zap.Error(err))
		return
	}
	defer clientConn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastProgress, lastStatus = -1, ""
	for {
		detail, err := h.deploymentService.GetDeployment(ctx, id)
		if err != nil {
			_ = clientConn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "deployment not found"))
			return
		}

		if detail.Progress != lastProgress || detail.Status != lastStatus {
			lastProgress, lastStatus = detail.Progress, detail.Status
			if err = clientConn.WriteJSON(detail); err != nil {
				return
			}
		}
		if model.IsTerminalDeploymentStatus(detail.Status) {
			_ = clientConn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, detail.Status))
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Request.Context().Done():
			return
		}
	}
}
