package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecrets(t *testing.T) {
	body := []byte(`{"name":"prod","api_key":"sk-12345","master_password":"hunter2","url":"https://erp.example.com"}`)
	masked := maskSecrets(body)
	assert.NotContains(t, masked, "sk-12345")
	assert.NotContains(t, masked, "hunter2")
	assert.Contains(t, masked, `"api_key":"***"`)
	assert.Contains(t, masked, `"master_password":"***"`)
	assert.Contains(t, masked, "https://erp.example.com")
}

func TestMaskSecretsNoSecrets(t *testing.T) {
	body := []byte(`{"email":"alan@example.com"}`)
	assert.Equal(t, string(body), maskSecrets(body))
}
