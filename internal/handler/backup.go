package handler

import (
	"net/http"
	"strconv"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BackupHandler struct {
	*Handler
	backupService service.BackupService
}

func NewBackupHandler(handler *Handler, backupService service.BackupService) *BackupHandler {
	return &BackupHandler{
		Handler:       handler,
		backupService: backupService,
	}
}

// CreateBackup godoc
// @Summary 手动创建实例备份
// @Tags 备份模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body v1.CreateBackupRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/backups [post]
func (h *BackupHandler) CreateBackup(ctx *gin.Context) {
	req := new(v1.CreateBackupRequest)
	if err := ctx.ShouldBindJSON(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	backup, err := h.backupService.CreateBackup(ctx, req.InstanceID, req.BackupType, GetUserIdFromCtx(ctx))
	if err != nil {
		h.logger.WithContext(ctx).Error("backupService.CreateBackup error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, v1.BackupItem{
		Id:         backup.Id,
		BackupNo:   backup.BackupNo,
		InstanceID: backup.InstanceID,
		BackupType: backup.BackupType,
		Status:     backup.Status,
		SizeBytes:  backup.SizeBytes,
		CreateTime: backup.CreateTime,
	})
}

// ListBackups godoc
// @Summary 查询备份列表
// @Tags 备份模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param request query v1.ListBackupRequest true "params"
// @Success 200 {object} v1.Response
// @Router /api/v1/backups [get]
func (h *BackupHandler) ListBackups(ctx *gin.Context) {
	req := new(v1.ListBackupRequest)
	if err := ctx.ShouldBindQuery(req); err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	data, err := h.backupService.ListBackups(ctx, req)
	if err != nil {
		h.logger.WithContext(ctx).Error("backupService.ListBackups error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, data)
}

// RestoreBackup godoc
// @Summary 恢复备份到所属实例
// @Tags 备份模块
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "备份ID"
// @Success 200 {object} v1.Response
// @Router /api/v1/backups/{id}/restore [post]
func (h *BackupHandler) RestoreBackup(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		v1.HandleError(ctx, http.StatusBadRequest, v1.ErrBadRequest, nil)
		return
	}

	if err := h.backupService.RestoreBackup(ctx, id); err != nil {
		h.logger.WithContext(ctx).Error("backupService.RestoreBackup error", zap.Error(err))
		v1.HandleError(ctx, http.StatusInternalServerError, err, nil)
		return
	}

	v1.HandleSuccess(ctx, nil)
}
