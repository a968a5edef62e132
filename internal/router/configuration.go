package router

import (
	"odoosphere/internal/middleware"

	"github.com/gin-gonic/gin"
)

func InitConfigurationRouter(
	deps RouterDeps,
	r *gin.RouterGroup,
) {
	strictAuthRouter := r.Group("/configurations").Use(middleware.StrictAuth(deps.JWT, deps.Logger))
	{
		strictAuthRouter.GET("", deps.ConfigurationHandler.ListConfigurations)
		strictAuthRouter.POST("", deps.ConfigurationHandler.CreateConfiguration)
		strictAuthRouter.GET("/:id", deps.ConfigurationHandler.GetConfiguration)
		strictAuthRouter.PUT("/:id", deps.ConfigurationHandler.UpdateConfiguration)
		strictAuthRouter.DELETE("/:id", deps.ConfigurationHandler.DeleteConfiguration)
		strictAuthRouter.POST("/:id/submit", deps.ConfigurationHandler.SubmitForReview)
		strictAuthRouter.POST("/:id/review", deps.ConfigurationHandler.ReviewConfiguration)
		strictAuthRouter.POST("/:id/validate", deps.ConfigurationHandler.ValidateConfiguration)
		strictAuthRouter.GET("/:id/versions", deps.ConfigurationHandler.ListVersions)
		strictAuthRouter.POST("/:id/redeploy", deps.ConfigurationHandler.RedeployVersion)
	}
}
