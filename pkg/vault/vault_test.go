package vault

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func newTestVault() *Vault {
	conf := viper.New()
	conf.Set("security.vault.key", "unit-test-vault-key")
	return NewVault(conf)
}

func TestVaultRoundTrip(t *testing.T) {
	v := newTestVault()

	ciphertext, err := v.Encrypt("admin-api-key-123")
	assert.NoError(t, err)
	assert.NotEqual(t, "admin-api-key-123", ciphertext)

	plaintext, err := v.Decrypt(ciphertext)
	assert.NoError(t, err)
	assert.Equal(t, "admin-api-key-123", plaintext)
}

func TestVaultNonceUnique(t *testing.T) {
	v := newTestVault()

	c1, err := v.Encrypt("secret")
	assert.NoError(t, err)
	c2, err := v.Encrypt("secret")
	assert.NoError(t, err)
	// 相同明文每次加密产生不同密文
	assert.NotEqual(t, c1, c2)
}

func TestVaultRejectsTampered(t *testing.T) {
	v := newTestVault()

	_, err := v.Decrypt("not-base64!!!")
	assert.Error(t, err)

	ciphertext, err := v.Encrypt("secret")
	assert.NoError(t, err)
	_, err = v.Decrypt(ciphertext[:len(ciphertext)-8] + "AAAAAAA=")
	assert.Error(t, err)
}

func TestVaultWrongKey(t *testing.T) {
	v := newTestVault()
	ciphertext, err := v.Encrypt("secret")
	assert.NoError(t, err)

	conf := viper.New()
	conf.Set("security.vault.key", "another-key")
	other := NewVault(conf)
	_, err = other.Decrypt(ciphertext)
	assert.Error(t, err)
}
