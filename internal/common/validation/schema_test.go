package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["product_name", "sales_amount"],
  "properties": {
    "product_name": {"type": "string", "minLength": 1},
    "sales_amount": {"type": "number", "minimum": 0}
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := CompileSchema(testSchema)
	require.NoError(t, err)

	t.Run("valid document", func(t *testing.T) {
		res, err := schema.Validate(map[string]interface{}{
			"product_name": "Laptop",
			"sales_amount": 1200.5,
		})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	t.Run("missing required field", func(t *testing.T) {
		res, err := schema.Validate(map[string]interface{}{"product_name": "Laptop"})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.True(t, res.HasErrors("sales_amount"))
		assert.Equal(t, "REQUIRED", res.Errors[0].Code)
	})

	t.Run("negative amount", func(t *testing.T) {
		res, err := schema.ValidateJSON(`{"product_name":"Laptop","sales_amount":-1}`)
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.True(t, res.HasErrors("sales_amount"))
		assert.Len(t, res.GetErrorMessages(), 1)
	})
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(`{"type": `)
	assert.Error(t, err)
}
