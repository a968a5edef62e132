package router

import (
	"odoosphere/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitInstanceRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	// Strict permission routing group
	strictAuthRouter := r.Group("/instances").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.InstanceHandler.ListInstances)
		strictAuthRouter.POST("", deps.InstanceHandler.CreateInstance)
		strictAuthRouter.GET("/:id", deps.InstanceHandler.GetInstance)
		strictAuthRouter.PUT("/:id", deps.InstanceHandler.UpdateInstance)
		strictAuthRouter.DELETE("/:id", deps.InstanceHandler.DeleteInstance)
		strictAuthRouter.POST("/:id/health", deps.InstanceHandler.CheckHealth)
	}
}
