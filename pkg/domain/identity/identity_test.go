package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_JSON(t *testing.T) {
	b, err := json.Marshal(ClientRole())
	require.NoError(t, err)
	assert.JSONEq(t, `"user"`, string(b))

	b, err = json.Marshal(StaffRole(3))
	require.NoError(t, err)
	assert.JSONEq(t, `3`, string(b))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"user"`), &r))
	assert.False(t, r.IsStaff())

	require.NoError(t, json.Unmarshal([]byte(`4`), &r))
	assert.True(t, r.IsStaff())
	assert.Equal(t, int64(4), r.RightsLevel())

	assert.Error(t, json.Unmarshal([]byte(`"admin"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`0`), &r))
	assert.Error(t, json.Unmarshal([]byte(`true`), &r))
}

func TestIdentity_HasRights(t *testing.T) {
	broker := Staff(7, "bob", 3)
	assert.True(t, broker.IsStaff())
	assert.Equal(t, KindStaff, broker.Kind())
	assert.True(t, broker.HasRights(1, 2, 3))
	assert.False(t, broker.HasRights(1, 2))

	alice := Client(1, "alice")
	assert.True(t, alice.IsClient())
	assert.Equal(t, KindClient, alice.Kind())
	assert.False(t, alice.HasRights(0))
	assert.Equal(t, "user", alice.Role.String())
}
