package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_JSON(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RolePatient, RoleMedicalStaff} {
		raw, err := json.Marshal(Session{ID: "s", Role: r})
		require.NoError(t, err)

		var got Session
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, r, got.Role)
	}

	raw, err := json.Marshal(Session{Role: RoleMedicalStaff})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"role":"medical_staff"`)
}

func TestRole_Unknown(t *testing.T) {
	_, err := ParseRole("doctor")
	assert.Error(t, err)

	_, err = json.Marshal(Session{})
	assert.Error(t, err)

	var s Session
	assert.Error(t, json.Unmarshal([]byte(`{"role":"root"}`), &s))
}

func TestUser_ViewHidesHash(t *testing.T) {
	u := User{ID: "1", Username: "admin", PasswordHash: "$2a$10$x", Role: RoleAdmin}
	raw, err := json.Marshal(u.View())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "passwordHash")
}
