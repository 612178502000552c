package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/arise-roster/internal/model"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"Passw0rd", true},
		{"aB3456", true},
		{"aB345", false},
		{"password1", false},
		{"PASSWORD1", false},
		{"Password", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := CheckPassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, model.IsValidation(err))
			}
		})
	}
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("email", ""))
	assert.NoError(t, Email("email", "coach@arise-tkd.com"))
	assert.Error(t, Email("email", "not-an-email"))
}

type sample struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role" validate:"required,role"`
	Email    string `json:"email" validate:"omitempty,email"`
}

func TestStructReportsJSONFieldName(t *testing.T) {
	err := Struct(sample{Password: "Passw0rd", Role: "coach"})
	var v *model.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "username", v.Field)
	assert.Equal(t, "is required", v.Message)
}

func TestStructPasswordPolicyMessage(t *testing.T) {
	err := Struct(sample{Username: "u", Password: "short", Role: "coach"})
	var v *model.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "password", v.Field)
	assert.Contains(t, v.Message, "at least 6")
}

func TestStructRoleAndEmail(t *testing.T) {
	err := Struct(sample{Username: "u", Password: "Passw0rd", Role: "owner"})
	var v *model.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "role", v.Field)

	err = Struct(sample{Username: "u", Password: "Passw0rd", Role: "coach", Email: "bad"})
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "email", v.Field)

	assert.NoError(t, Struct(sample{Username: "u", Password: "Passw0rd", Role: "coach"}))
}
