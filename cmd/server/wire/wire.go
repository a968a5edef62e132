//go:build wireinject
// +build wireinject

package wire

import (
	"odoosphere/internal/handler"
	"odoosphere/internal/job"
	"odoosphere/internal/repository"
	"odoosphere/internal/router"
	"odoosphere/internal/server"
	"odoosphere/internal/service"
	"odoosphere/pkg/app"
	"odoosphere/pkg/jwt"
	"odoosphere/pkg/log"
	"odoosphere/pkg/server/http"
	"odoosphere/pkg/sid"
	"odoosphere/pkg/vault"

	"github.com/google/wire"
	"github.com/spf13/viper"
)

var repositorySet = wire.NewSet(
	repository.NewDB,
	repository.NewRedis,
	repository.NewRepository,
	repository.NewTransaction,
	repository.NewUserRepository,
	repository.NewOdooInstanceRepository,
	repository.NewConfigurationRepository,
	repository.NewConfigurationVersionRepository,
	repository.NewDeploymentRepository,
	repository.NewDeploymentLogRepository,
	repository.NewBackupRepository,
	repository.NewNotificationRepository,
	repository.NewInstanceLockRepository,
)

var serviceSet = wire.NewSet(
	service.NewService,
	service.NewConnectorFactory,
	service.NewCodeValidator,
	service.NewEmailSender,
	service.NewWebhookSender,
	service.NewUserService,
	service.NewOdooInstanceService,
	service.NewValidationService,
	service.NewConfigurationService,
	service.NewVersionService,
	service.NewNotificationService,
	service.NewBackupService,
	service.NewDeploymentService,
	service.NewMonitoringService,
)

var handlerSet = wire.NewSet(
	handler.NewHandler,
	handler.NewUserHandler,
	handler.NewOdooInstanceHandler,
	handler.NewConfigurationHandler,
	handler.NewDeploymentHandler,
	handler.NewBackupHandler,
	handler.NewNotificationHandler,
)

var jobSet = wire.NewSet(
	job.NewJob,
	job.NewDeploymentMonitorJob,
	job.NewInstanceHealthJob,
)
var serverSet = wire.NewSet(
	server.NewHTTPServer,
	server.NewJobServer,
)

// build App
func newApp(
	httpServer *http.Server,
	jobServer *server.JobServer,
) *app.App {
	return app.NewApp(
		app.WithServer(httpServer, jobServer),
		app.WithName("odoosphere-server"),
	)
}

func NewWire(*viper.Viper, *log.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		repositorySet,
		serviceSet,
		handlerSet,
		jobSet,
		serverSet,
		wire.Struct(new(router.RouterDeps), "*"),
		sid.NewSid,
		jwt.NewJwt,
		vault.NewVault,
		newApp,
	))
}
