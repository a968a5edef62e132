package service

import (
	"context"
	"testing"

	v1 "odoosphere/api/v1"
	"odoosphere/internal/model"
	"odoosphere/pkg/vault"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestVaultForService() *vault.Vault {
	conf := viper.New()
	conf.Set("security.vault.key", "service-test-vault-key")
	return vault.NewVault(conf)
}

func TestCreateInstanceEncryptsCredentials(t *testing.T) {
	instanceRepo := newFakeInstanceRepo()
	v := newTestVaultForService()
	svc := NewOdooInstanceService(newTestService(), instanceRepo, &fakeConnectorFactory{conn: &fakeConnector{}}, v, newTestLogger())

	id, err := svc.CreateInstance(context.Background(), &v1.CreateInstanceRequest{
		InstanceName: "acme-prod",
		CompanyID:    1,
		ApiUrl:       "https://erp.acme.example.com",
		Database:     "acme_prod",
		Username:     "admin",
		ApiKey:       "plain-api-key",
		MasterPwd:    "plain-master-pwd",
		IsEnabled:    1,
	})
	assert.NoError(t, err)

	instance, _ := instanceRepo.GetByID(context.Background(), id)
	// 凭据只保存密文
	assert.NotEmpty(t, instance.CredentialCipher)
	assert.NotEqual(t, "plain-api-key", instance.CredentialCipher)
	assert.NotEmpty(t, instance.MasterPwdCipher)
	assert.Equal(t, model.InstanceStatusUnknown, instance.Status)

	plaintext, err := v.Decrypt(instance.CredentialCipher)
	assert.NoError(t, err)
	assert.Equal(t, "plain-api-key", plaintext)
}

func TestCheckHealthOnline(t *testing.T) {
	instance := enabledInstance(1)
	instanceRepo := newFakeInstanceRepo(instance)
	svc := NewOdooInstanceService(newTestService(), instanceRepo,
		&fakeConnectorFactory{conn: &fakeConnector{}}, newTestVaultForService(), newTestLogger())

	data, err := svc.CheckHealth(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, model.InstanceStatusOnline, data.Status)
	assert.Equal(t, "17.0", data.ServerVersion)
}

func TestCheckHealthOffline(t *testing.T) {
	instance := enabledInstance(1)
	instanceRepo := newFakeInstanceRepo(instance)
	svc := NewOdooInstanceService(newTestService(), instanceRepo,
		&fakeConnectorFactory{openErr: assert.AnError}, newTestVaultForService(), newTestLogger())

	// 连接失败不返回错误，健康状态标记为 offline
	data, err := svc.CheckHealth(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, model.InstanceStatusOffline, data.Status)
	assert.NotEmpty(t, data.Error)
}

func TestInstanceNotFoundPaths(t *testing.T) {
	svc := NewOdooInstanceService(newTestService(), newFakeInstanceRepo(),
		&fakeConnectorFactory{conn: &fakeConnector{}}, newTestVaultForService(), newTestLogger())
	ctx := context.Background()

	_, err := svc.GetInstance(ctx, 99)
	assert.ErrorIs(t, err, v1.ErrInstanceNotFound)

	err = svc.DeleteInstance(ctx, 99)
	assert.ErrorIs(t, err, v1.ErrInstanceNotFound)

	_, err = svc.CheckHealth(ctx, 99)
	assert.ErrorIs(t, err, v1.ErrInstanceNotFound)
}
