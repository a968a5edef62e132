package router

import (
	"odoosphere/internal/handler"
	"odoosphere/pkg/jwt"
	"odoosphere/pkg/log"

	"github.com/spf13/viper"
)

type RouterDeps struct {
	Logger               *log.Logger
	Config               *viper.Viper
	JWT                  *jwt.JWT
	UserHandler          *handler.UserHandler
	InstanceHandler      *handler.OdooInstanceHandler
	ConfigurationHandler *handler.ConfigurationHandler
	DeploymentHandler    *handler.DeploymentHandler
	BackupHandler        *handler.BackupHandler
	NotificationHandler  *handler.NotificationHandler
}
