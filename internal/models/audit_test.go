package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullJSONScan(t *testing.T) {
	var j NullJSON
	require.NoError(t, j.Scan(nil))
	assert.Nil(t, j)

	require.NoError(t, j.Scan([]byte(`{"a":1}`)))
	assert.JSONEq(t, `{"a":1}`, string(j))

	require.NoError(t, j.Scan(`[1,2]`))
	assert.JSONEq(t, `[1,2]`, string(j))

	assert.Error(t, j.Scan(42))
}

func TestNullJSONMarshal(t *testing.T) {
	body, err := json.Marshal(AuditLog{ID: 1, NewValues: NullJSON(`{"approved":true}`)})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Nil(t, decoded["oldValues"])
	assert.Contains(t, decoded, "oldValues")
	assert.Equal(t, map[string]interface{}{"approved": true}, decoded["newValues"])
}
