package validator

import (
	"testing"

	"micasa/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, Register(v))
	return v
}

func TestUserRole(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		role  string
		valid bool
	}{
		{"hunter", true},
		{"owner", true},
		{"mover", true},
		{"admin", true},
		{"Admin", false},
		{"landlord", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			err := v.Var(tt.role, "userrole")
			assert.Equal(t, tt.valid, err == nil, "role: %q", tt.role)
		})
	}
}

func TestSelfRole(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Var("hunter", "selfrole"))
	assert.NoError(t, v.Var("owner", "selfrole"))
	assert.NoError(t, v.Var("mover", "selfrole"))
	assert.Error(t, v.Var("admin", "selfrole"))
	assert.Error(t, v.Var("landlord", "selfrole"))
}

func TestRegisterRequestBinding(t *testing.T) {
	v := newValidate(t)

	valid := models.RegisterRequest{Email: "a@b.co", Password: "secret123", Name: "Ana"}
	assert.NoError(t, v.Struct(valid), "role is optional")

	valid.Role = models.RoleOwner
	assert.NoError(t, v.Struct(valid))

	valid.Role = models.RoleAdmin
	assert.Error(t, v.Struct(valid))

	change := models.ChangeRoleRequest{Role: models.RoleAdmin}
	assert.NoError(t, v.Struct(change))

	change.Role = "ghost"
	assert.Error(t, v.Struct(change))
}
