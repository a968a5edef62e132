package server

import (
	apiV1 "odoosphere/api/v1"
	"odoosphere/docs"
	"odoosphere/internal/middleware"
	"odoosphere/internal/router"
	"odoosphere/pkg/server/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewHTTPServer(
	deps router.RouterDeps,
) *http.Server {
	if deps.Config.GetString("env") == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := http.NewServer(
		gin.Default(),
		deps.Logger,
		http.WithServerHost(deps.Config.GetString("http.host")),
		http.WithServerPort(deps.Config.GetInt("http.port")),
	)

	// swagger doc
	docs.SwaggerInfo.BasePath = "/"
	s.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerfiles.Handler,
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	s.Use(
		middleware.CORSMiddleware(),
		middleware.ResponseLogMiddleware(deps.Logger),
		middleware.RequestLogMiddleware(deps.Logger),
	)
	s.GET("/", func(ctx *gin.Context) {
		deps.Logger.WithContext(ctx).Info("hello")
		apiV1.HandleSuccess(ctx, map[string]interface{}{
			":)": "Thank you for using OdooSphere!",
		})
	})

	api := s.Group("/api/v1")
	router.InitUserRouter(deps, api)
	router.InitInstanceRouter(deps, api)
	router.InitConfigurationRouter(deps, api)
	router.InitDeploymentRouter(deps, api)
	router.InitBackupRouter(deps, api)
	router.InitNotificationRouter(deps, api)

	return s
}
