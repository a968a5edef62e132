package service

import (
	"context"
	"io"

	"odoosphere/internal/model"
	"odoosphere/pkg/odoorpc"
	"odoosphere/pkg/vault"
)

// ErpConnector 部署执行期间对远端 Odoo 实例的全部操作面
// 同一连接同一时刻只有一个调用在途
type ErpConnector interface {
	Authenticate(ctx context.Context) error
	Version(ctx context.Context) (map[string]interface{}, error)
	FindModule(ctx context.Context, technicalName string) (map[string]interface{}, error)
	InstallModule(ctx context.Context, moduleID int64) error
	FindModelField(ctx context.Context, model, fieldName string) (map[string]interface{}, error)
	CreateModelField(ctx context.Context, values map[string]interface{}) (int64, error)
	CreateView(ctx context.Context, values map[string]interface{}) (int64, error)
	SetConfigParameter(ctx context.Context, key string, value interface{}) error
	BackupDatabase(ctx context.Context, masterPassword string, w io.Writer) (int64, error)
	RestoreDatabase(ctx context.Context, masterPassword string, backup io.Reader) error
	Close()
}

// ConnectorFactory 按实例创建连接；每次部署创建新连接，凭据按需解密不缓存
type ConnectorFactory interface {
	Open(ctx context.Context, instance *model.OdooInstance) (ErpConnector, error)
	MasterPassword(instance *model.OdooInstance) (string, error)
}

func NewConnectorFactory(v *vault.Vault) ConnectorFactory {
	return &odooConnectorFactory{vault: v}
}

type odooConnectorFactory struct {
	vault *vault.Vault
}

func (f *odooConnectorFactory) Open(ctx context.Context, instance *model.OdooInstance) (ErpConnector, error) {
	apiKey, err := f.vault.Decrypt(instance.CredentialCipher)
	if err != nil {
		return nil, err
	}
	return odoorpc.NewClient(instance.ApiUrl, instance.Database, instance.Username, apiKey)
}

func (f *odooConnectorFactory) MasterPassword(instance *model.OdooInstance) (string, error) {
	if instance.MasterPwdCipher == "" {
		return "", nil
	}
	return f.vault.Decrypt(instance.MasterPwdCipher)
}
