package router

import (
	"odoosphere/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitNotificationRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/notifications").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.NotificationHandler.ListNotifications)
		strictAuthRouter.POST("/:id/read", deps.NotificationHandler.MarkRead)
	}
}
