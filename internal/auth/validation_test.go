package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authapi/internal/models"
)

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestValidator_Register(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(models.RegisterRequest{Username: "alice123", Email: "a@x.com", Password: "Passw0rd!"}))

	tests := []struct {
		name  string
		req   models.RegisterRequest
		field string
		want  string
	}{
		{"short username", models.RegisterRequest{Username: "al", Email: "a@x.com", Password: "Passw0rd!"}, "username", "Username must be at least 3 characters"},
		{"bad email", models.RegisterRequest{Username: "alice", Email: "not-an-email", Password: "Passw0rd!"}, "email", "Please enter a valid email address"},
		{"short password", models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "P0!"}, "password", "Password must be at least 8 characters"},
		{"no digit", models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "Password!"}, "password", "Password must contain at least one number"},
		{"no symbol", models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "Passw0rd1"}, "password", "Password must contain at least one special character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs := fieldMessages(t, v.Validate(tt.req))
			assert.Equal(t, tt.want, msgs[tt.field])
			assert.Len(t, msgs, 1)
		})
	}
}

func TestValidator_MultipleFields(t *testing.T) {
	msgs := fieldMessages(t, NewValidator().Validate(models.RegisterRequest{}))
	assert.Len(t, msgs, 3)
	assert.Contains(t, msgs, "username")
	assert.Contains(t, msgs, "email")
	assert.Contains(t, msgs, "password")
}

func TestValidator_ResetPassword(t *testing.T) {
	v := NewValidator()
	token := "0123456789abcdef"

	assert.NoError(t, v.Validate(models.ResetPasswordRequest{Token: token, Password: "NewPassw0rd!", ConfirmPassword: "NewPassw0rd!"}))

	msgs := fieldMessages(t, v.Validate(models.ResetPasswordRequest{Token: token, Password: "NewPassw0rd!", ConfirmPassword: "Other0000!"}))
	assert.Equal(t, "passwords must match", msgs["confirmPassword"])

	msgs = fieldMessages(t, v.Validate(models.ResetPasswordRequest{Token: "short", Password: "NewPassw0rd!", ConfirmPassword: "NewPassw0rd!"}))
	assert.Equal(t, "Invalid reset token", msgs["token"])
}

func TestValidator_Login(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(models.LoginRequest{Username: "bob", Password: "whatever1"}))

	msgs := fieldMessages(t, v.Validate(models.LoginRequest{Username: "bob", Password: "short"}))
	assert.Equal(t, "Password must be at least 8 characters", msgs["password"])
}

func TestIsSymbol(t *testing.T) {
	for _, r := range "!@#$ _-é" {
		assert.True(t, isSymbol(r), "%q", r)
	}
	for _, r := range "azAZ09" {
		assert.False(t, isSymbol(r), "%q", r)
	}
}
