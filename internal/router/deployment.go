package router

import (
	"odoosphere/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitDeploymentRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/deployments").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.DeploymentHandler.ListDeployments)
		strictAuthRouter.POST("", deps.DeploymentHandler.CreateDeployment)
		// metrics 必须在 /:id 之前定义，避免路由冲突
		strictAuthRouter.GET("/metrics", deps.DeploymentHandler.GetMetrics)
		strictAuthRouter.GET("/:id", deps.DeploymentHandler.GetDeployment)
		strictAuthRouter.GET("/:id/logs", deps.DeploymentHandler.GetLogs)
		strictAuthRouter.POST("/:id/rollback", deps.DeploymentHandler.Rollback)
		strictAuthRouter.POST("/:id/subscriptions", deps.NotificationHandler.Subscribe)
	}

	// WebSocket 握手无法携带 Authorization 头，走 NoStrictAuth 从 query 取 token
	watchRouter := r.Group("/deployments").Use(middleware.NoStrictAuth(deps.JWT, deps.Logger))
	{
		watchRouter.GET("/:id/watch", deps.DeploymentHandler.WatchDeployment)
	}
}
