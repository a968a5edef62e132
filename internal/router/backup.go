package router

import (
	"odoosphere/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitBackupRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/backups").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.BackupHandler.ListBackups)
		strictAuthRouter.POST("", deps.BackupHandler.CreateBackup)
		strictAuthRouter.POST("/:id/restore", deps.BackupHandler.RestoreBackup)
	}
}
