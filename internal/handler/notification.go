package handler

import (
	"net/http"
	"strconv"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	*Handler
	notificationService service.NotificationService
}

func NewNotificationHandler(handler *Handler, notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		Handler:             handler,
		notificationService: notificationService,
	}
}

// Subscribe godoc
// @Summary 订阅部署通知
// @Tags 通知模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "部署ID"
// @Param request body v1.CreateSubscriptionRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/deployments/{id}/subscriptions [post]
func (h *NotificationHandler) Subscribe(ctx *gin.Context) {
	deploymentID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	req := new(v1.CreateSubscriptionRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	id, err := h.notificationService.Subscribe(ctx, deploymentID, GetUserIdFromCtx(ctx), req)
	if err != nil {
		h.logger.WithContext(ctx).Error("notificationService.Subscribe error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, v1.CreateSubscriptionResponseData{SubscriptionID: id})
}

// ListNotifications godoc
// @Summary 查询站内通知
// @Tags 通知模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request query v1.ListNotificationRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) ListNotifications(ctx *gin.Context) {
	req := new(v1.ListNotificationRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.notificationService.ListNotifications(ctx, GetUserIdFromCtx(ctx), req)
	if err != nil {
		h.logger.WithContext(ctx).Error("notificationService.ListNotifications error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// MarkRead godoc
// @Summary 标记通知已读
// @Tags 通知模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "通知ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.notificationService.MarkRead(ctx, GetUserIdFromCtx(ctx), id); err != nil {
		h.logger.WithContext(ctx).Error("notificationService.MarkRead error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}
