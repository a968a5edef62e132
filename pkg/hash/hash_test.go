package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateContentHash(t *testing.T) {
	h1 := CalculateContentHash(`{"modules":[{"name":"CRM"}]}`)
	h2 := CalculateContentHash(`{"modules":[{"name":"CRM"}]}`)
	h3 := CalculateContentHash(`{"modules":[{"name":"Sales"}]}`)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestCalculateStructureHashIgnoresMetadata(t *testing.T) {
	type payload struct {
		Name       string `json:"name"`
		Id         int64  `json:"id"`
		CreateTime string `json:"create_time"`
		Creator    string `json:"creator"`
	}

	h1, err := CalculateStructureHash(payload{Name: "crm_kickoff", Id: 1, CreateTime: "2024-01-01", Creator: "alice"})
	assert.NoError(t, err)
	h2, err := CalculateStructureHash(payload{Name: "crm_kickoff", Id: 99, CreateTime: "2025-06-30", Creator: "bob"})
	assert.NoError(t, err)
	// 元数据字段不参与哈希
	assert.Equal(t, h1, h2)

	h3, err := CalculateStructureHash(payload{Name: "sales_kickoff"})
	assert.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
