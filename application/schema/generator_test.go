package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSchema_Struct(t *testing.T) {
	type Order struct {
		ID       string  `json:"id" jsonschema:"required"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price,omitempty"`
	}

	schema, err := GenerateSchema(Order{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(schema, &decoded))

	assert.Equal(t, "object", decoded["type"])
	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "id")
	assert.Contains(t, props, "quantity")
	assert.Contains(t, props, "price")
	assert.Contains(t, decoded["required"], "id")
}

func TestGenerateSchema_Nested(t *testing.T) {
	type Address struct {
		City string `json:"city"`
	}
	type Customer struct {
		Name    string  `json:"name"`
		Address Address `json:"address"`
	}

	schema, err := GenerateSchema(Customer{})
	require.NoError(t, err)
	assert.Contains(t, string(schema), "address")
	assert.Contains(t, string(schema), "city")
}

func TestGenerateSchema_Nil(t *testing.T) {
	schema, err := GenerateSchema(nil)
	require.NoError(t, err)
	assert.Nil(t, schema)
}
