package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellValue(t *testing.T) {
	t.Run("should render numbers without a trailing zero", func(t *testing.T) {
		assert.Equal(t, "42", NumberCell(42).String())
		assert.Equal(t, "3.14", NumberCell(3.14).String())
	})

	t.Run("should render null as empty", func(t *testing.T) {
		assert.Equal(t, "", NullCell.String())
		assert.True(t, NullCell.IsNull())
	})

	t.Run("should reject nested values", func(t *testing.T) {
		_, err := CellFromAny(map[string]any{"nested": true})
		assert.Error(t, err)

		_, err = CellFromAny([]any{1, 2})
		assert.Error(t, err)
	})

	t.Run("should decode a reference row of scalars", func(t *testing.T) {
		var row ReferenceRow
		err := json.Unmarshal([]byte(`{"name":"Acme","size":12,"active":true,"notes":null}`), &row)

		require.NoError(t, err)
		assert.Equal(t, "Acme", row.Get("name").String())
		assert.Equal(t, "12", row.Get("size").String())
		assert.Equal(t, "true", row.Get("active").String())
		assert.True(t, row.Get("notes").IsNull())
		assert.True(t, row.Get("missing").IsNull())
	})

	t.Run("should fail decoding a row with nested values", func(t *testing.T) {
		var row ReferenceRow
		err := json.Unmarshal([]byte(`{"name":{"first":"A"}}`), &row)
		assert.Error(t, err)
	})
}
