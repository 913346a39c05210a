package services

import (
	"testing"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
)

func TestUserNameRules(t *testing.T) {
	valid := []string{"abc", "Alice_01", "___", "A23456789012345678901234567890123456789012345678901"[:50]}
	invalid := []string{"", "ab", "has space", "dash-ed", "ünï", "A23456789012345678901234567890123456789012345678901"}

	for _, v := range valid {
		assert.NoError(t, validation.Validate(v, UserNameRules...), v)
	}
	for _, v := range invalid {
		assert.Error(t, validation.Validate(v, UserNameRules...), v)
	}
}

func TestPasswordRules(t *testing.T) {
	valid := []string{"Passw0rd", "aB3aB3aB3", "ÄbcdefG1"}
	invalid := []string{"", "Pa0", "password1", "PASSWORD1", "Password", "12345678"}

	for _, v := range valid {
		assert.NoError(t, validation.Validate(v, PasswordRules...), v)
	}
	for _, v := range invalid {
		assert.Error(t, validation.Validate(v, PasswordRules...), v)
	}
}

func TestRoleRules(t *testing.T) {
	assert.NoError(t, validation.Validate("", RoleRules...))
	assert.NoError(t, validation.Validate("user", RoleRules...))
	assert.NoError(t, validation.Validate(models.RoleAdmin, RoleRules...))
	assert.Error(t, validation.Validate("root", RoleRules...))
}

func TestValidateCredentials_WrapsErrValidation(t *testing.T) {
	err := validateCredentials("a", "b")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "password")

	assert.NoError(t, validateCredentials("alice", "Passw0rd1"))
}

func TestCustomRules_DereferencePointers(t *testing.T) {
	weak := "password1"
	strong := "Passw0rd1"
	bad := "root"
	good := "Admin"
	var nilStr *string

	assert.Error(t, validation.Validate(&weak, PasswordRules...))
	assert.NoError(t, validation.Validate(&strong, PasswordRules...))
	assert.Error(t, validation.Validate(&bad, RoleRules...))
	assert.NoError(t, validation.Validate(&good, RoleRules...))
	assert.NoError(t, validation.Validate(nilStr, RoleRules...))
}
